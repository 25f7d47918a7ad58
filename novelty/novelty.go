package novelty

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/ankurju/melody"
	"github.com/unixpickle/essentials"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the scores of one generated melody
// against every reference.
type Stats struct {
	Mean float64
	Std  float64
	Max  float64
	Min  float64
}

// Score converts the DTW cost between two feature
// sequences into a similarity in (0, 1].
// Identical sequences score 1.
//
// If either sequence is empty, the score is 0.
func Score(gen, ref []Feature) float64 {
	if len(gen) == 0 || len(ref) == 0 {
		return 0
	}
	norm := float64(max(len(gen), len(ref)))
	return 1 / (1 + DTW(gen, ref)/norm)
}

// Analyze scores gen against every reference.
// An empty reference list yields zero Stats.
func Analyze(gen []Feature, refs [][]Feature) Stats {
	scores := make([]float64, len(refs))
	for i, ref := range refs {
		scores[i] = Score(gen, ref)
	}
	return summarize(scores)
}

// AnalyzeConcurrent is like Analyze, but it scores up to
// workers references at once.
//
// Cancelling ctx stops scheduling new references and the
// context's error is returned.
func AnalyzeConcurrent(ctx context.Context, gen []Feature, refs [][]Feature,
	workers int) (Stats, error) {
	scores := make([]float64, len(refs))
	group, groupCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		group.SetLimit(workers)
	}
	for i, ref := range refs {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			scores[i] = Score(gen, ref)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	return summarize(scores), nil
}

func summarize(scores []float64) Stats {
	if len(scores) == 0 {
		return Stats{}
	}
	mean, std := stat.PopMeanStdDev(scores, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return Stats{
		Mean: mean,
		Std:  std,
		Max:  floats.Max(scores),
		Min:  floats.Min(scores),
	}
}

// LoadReferences reads every encoded-song file in a
// dataset directory, in name order, and extracts its
// features.
//
// Sub-directories and hidden files are ignored.
func LoadReferences(dir string) ([][]Feature, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, essentials.AddCtx("load references", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name()[0] == '.' {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	res := make([][]Feature, 0, len(names))
	for _, name := range names {
		symbols, err := melody.ReadSymbolFile(filepath.Join(dir, name))
		if err != nil {
			return nil, essentials.AddCtx("load references", err)
		}
		res = append(res, ExtractFeatures(symbols))
	}
	return res, nil
}
