// Package generator extends seed melodies one symbol at a
// time using a trained next-symbol model.
package generator

import (
	"context"
	"fmt"

	"github.com/ankurju/melody"
	"github.com/ankurju/melody/seqtrain"
	"github.com/ankurju/melody/vocab"
	"github.com/ankurju/melody/window"
	"github.com/unixpickle/anyvec"
	"golang.org/x/sync/errgroup"
)

// A Predictor maps a window of one-hot vectors to a
// probability distribution over the next symbol.
type Predictor interface {
	Predict(window []anyvec.Vector) (anyvec.Vector, error)
}

// A Generator produces melodies from a model.
//
// A Generator is safe for concurrent use if its Model and
// Sampler are.
type Generator struct {
	Vocab   *vocab.Vocabulary
	Model   Predictor
	Creator anyvec.Creator
	Sampler Sampler
}

// Generate extends seed by at most numSteps symbols.
//
// The model sees the last windowLength symbols of the
// seed, left-padded with delimiters.
// Generation stops early when the model picks a
// delimiter, which is not included in the result.
//
// The result always starts with the seed. A non-positive
// numSteps yields the seed unchanged.
func (g *Generator) Generate(seed []melody.Symbol, numSteps, windowLength int,
	temperature float64) ([]melody.Symbol, error) {
	if err := checkTemperature(temperature); err != nil {
		return nil, err
	}
	if windowLength < 1 {
		return nil, fmt.Errorf("generate: invalid window length %d", windowLength)
	}
	seedIndices, err := g.Vocab.ToIndices(seed)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	delim, err := g.Vocab.Index(melody.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	numSteps = max(numSteps, 0)
	buffer := make([]int, windowLength, windowLength+len(seedIndices)+numSteps)
	for i := range buffer {
		buffer[i] = delim
	}
	buffer = append(buffer, seedIndices...)
	output := append([]melody.Symbol{}, seed...)

	for step := 0; step < numSteps; step++ {
		next, err := g.next(buffer[len(buffer)-windowLength:], temperature)
		if err != nil {
			return nil, fmt.Errorf("generate: step %d: %w", step, err)
		}
		if next == delim {
			break
		}
		sym, err := g.Vocab.ToSymbol(next)
		if err != nil {
			return nil, fmt.Errorf("generate: step %d: %w", step, err)
		}
		buffer = append(buffer, next)
		output = append(output, sym)
	}
	return output, nil
}

func (g *Generator) next(indices []int, temperature float64) (int, error) {
	in, err := window.OneHotWindow(g.Creator, indices, g.Vocab.Len())
	if err != nil {
		return 0, err
	}
	out, err := g.Model.Predict(in)
	if err != nil {
		return 0, err
	}
	probs := seqtrain.Floats(out)
	if len(probs) != g.Vocab.Len() {
		return 0, fmt.Errorf("%w: %d probabilities for %d symbols",
			ErrBadDistribution, len(probs), g.Vocab.Len())
	}
	return g.Sampler.Sample(probs, temperature)
}

// GenerateAll runs Generate for every seed, using up to
// workers goroutines.
//
// Results are in the order of the seeds.
// Cancelling ctx stops scheduling new seeds.
func (g *Generator) GenerateAll(ctx context.Context, seeds [][]melody.Symbol,
	numSteps, windowLength int, temperature float64, workers int) ([][]melody.Symbol, error) {
	res := make([][]melody.Symbol, len(seeds))
	group, groupCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		group.SetLimit(workers)
	}
	for i, seed := range seeds {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			out, err := g.Generate(seed, numSteps, windowLength, temperature)
			if err != nil {
				return fmt.Errorf("seed %d: %w", i, err)
			}
			res[i] = out
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// ParseSeed parses a space-separated seed such as
// "64 _ 64 _ _ _ r".
func ParseSeed(s string) ([]melody.Symbol, error) {
	return melody.ParseSymbols(s)
}
