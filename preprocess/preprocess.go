// Package preprocess turns a directory of event files
// into encoded songs, a single-file corpus and a
// vocabulary.
package preprocess

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ankurju/melody"
	"github.com/ankurju/melody/vocab"
	"github.com/ankurju/melody/window"
	"github.com/unixpickle/essentials"
	"golang.org/x/sync/errgroup"
)

// EventExt is the extension of the event files read from
// a dataset directory.
const EventExt = ".events"

var errUnacceptableDurations = errors.New("unacceptable durations")

// A Piece is one song before encoding.
type Piece struct {
	Name   string
	Events []melody.Event

	// Key is the key declared by the file, if any.
	Key *Key
}

// A Skip records a piece that was left out and why.
type Skip struct {
	Name   string
	Reason error
}

// A Report summarizes a preprocessing run.
type Report struct {
	Loaded     int
	Encoded    int
	Skipped    []Skip
	CorpusLen  int
	VocabSize  int
	SongPaths  []string
	CorpusPath string
}

// Options controls how pieces are encoded.
type Options struct {
	TimeStep            float64
	AcceptableDurations []float64

	// Transpose moves every piece to C major or A minor,
	// using the declared key or an estimate.
	Transpose bool

	// Workers limits the number of pieces encoded at once.
	// Zero means no limit.
	Workers int

	// Logger, if non-nil, receives progress messages.
	Logger *log.Logger
}

// A Pipeline runs every preprocessing stage.
type Pipeline struct {
	DatasetPath string
	SaveDir     string
	CorpusPath  string
	MappingPath string

	SequenceLength int

	Options
}

// Run loads, filters, transposes and encodes every piece,
// then writes one encoded-song file per piece, the corpus
// and the vocabulary.
//
// Pieces which cannot be loaded or encoded are skipped and
// listed in the report.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	p.logf("Loading songs...")
	pieces, skipped, err := LoadPieces(p.DatasetPath)
	if err != nil {
		return nil, err
	}
	p.logf("Loaded %d songs", len(pieces))

	encoded, report, err := EncodePieces(ctx, pieces, p.Options)
	if err != nil {
		return nil, err
	}
	report.Loaded += len(skipped)
	report.Skipped = append(skipped, report.Skipped...)

	if err := os.MkdirAll(p.SaveDir, 0755); err != nil {
		return nil, essentials.AddCtx("preprocess", err)
	}
	for i, song := range encoded {
		path := filepath.Join(p.SaveDir, strconv.Itoa(i))
		if err := melody.WriteSymbolFile(path, song); err != nil {
			return nil, essentials.AddCtx("preprocess", err)
		}
		report.SongPaths = append(report.SongPaths, path)
	}

	corpus := window.BuildCorpus(encoded, p.SequenceLength)
	if err := window.WriteCorpus(p.CorpusPath, corpus); err != nil {
		return nil, err
	}
	v := vocab.FromSymbols(corpus)
	if err := v.Save(p.MappingPath); err != nil {
		return nil, err
	}
	report.CorpusLen = len(corpus)
	report.VocabSize = v.Len()
	report.CorpusPath = p.CorpusPath
	p.logf("Wrote %d songs, corpus of %d symbols, %d vocabulary entries",
		len(encoded), len(corpus), v.Len())
	return report, nil
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
	}
}

// LoadPieces reads every event file under dir, in path
// order.
//
// Files that fail to parse are returned as skips rather
// than errors.
func LoadPieces(dir string) ([]Piece, []Skip, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), EventExt) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, essentials.AddCtx("load pieces", err)
	}
	sort.Strings(paths)

	var pieces []Piece
	var skipped []Skip
	for _, path := range paths {
		name, _ := filepath.Rel(dir, path)
		piece, err := readPiece(path)
		if err != nil {
			skipped = append(skipped, Skip{Name: name, Reason: err})
			continue
		}
		piece.Name = name
		pieces = append(pieces, *piece)
	}
	return pieces, skipped, nil
}

func readPiece(path string) (*Piece, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	events, err := melody.ReadEvents(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	key, err := scanKey(data)
	if err != nil {
		return nil, err
	}
	return &Piece{Events: events, Key: key}, nil
}

// scanKey finds a "# key: ..." comment line.
func scanKey(data []byte) (*Key, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "#") {
			continue
		}
		comment := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if value, ok := strings.CutPrefix(comment, "key:"); ok {
			key, err := ParseKey(value)
			if err != nil {
				return nil, err
			}
			return &key, nil
		}
	}
	return nil, scanner.Err()
}

// EncodePieces filters, optionally transposes and encodes
// pieces in parallel.
//
// The encoded songs keep the order of the input, minus
// the skipped pieces.
func EncodePieces(ctx context.Context, pieces []Piece,
	opts Options) ([][]melody.Symbol, *Report, error) {
	results := make([][]melody.Symbol, len(pieces))
	errs := make([]error, len(pieces))

	group, groupCtx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		group.SetLimit(opts.Workers)
	}
	for i, piece := range pieces {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = encodePiece(piece, opts)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	report := &Report{Loaded: len(pieces)}
	var encoded [][]melody.Symbol
	for i, err := range errs {
		if err != nil {
			report.Skipped = append(report.Skipped, Skip{Name: pieces[i].Name, Reason: err})
			if opts.Logger != nil {
				opts.Logger.Printf("Skipping %s: %v", pieces[i].Name, err)
			}
			continue
		}
		encoded = append(encoded, results[i])
	}
	report.Encoded = len(encoded)
	return encoded, report, nil
}

func encodePiece(piece Piece, opts Options) ([]melody.Symbol, error) {
	if len(opts.AcceptableDurations) > 0 &&
		!melody.HasAcceptableDurations(piece.Events, opts.AcceptableDurations) {
		return nil, errUnacceptableDurations
	}
	events := piece.Events
	if opts.Transpose {
		key, err := pieceKey(piece)
		if err != nil {
			return nil, err
		}
		events, err = melody.Transpose(events, key.Interval())
		if err != nil {
			return nil, err
		}
	}
	step := opts.TimeStep
	if step == 0 {
		step = melody.DefaultTimeStep
	}
	return melody.Encode(events, step)
}

func pieceKey(piece Piece) (Key, error) {
	if piece.Key != nil {
		return *piece.Key, nil
	}
	return EstimateKey(piece.Events)
}
