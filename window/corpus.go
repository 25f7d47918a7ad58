// Package window turns encoded songs into fixed-length
// training windows for next-symbol prediction.
package window

import (
	"errors"
	"fmt"

	"github.com/ankurju/melody"
	"github.com/ankurju/melody/vocab"
	"github.com/unixpickle/essentials"
)

// ErrCorpusTooShort is returned when a corpus has no
// complete window followed by a label.
var ErrCorpusTooShort = errors.New("corpus too short")

// An Example is a window of vocabulary indices and the
// index that follows it.
type Example struct {
	Input []int
	Label int
}

// BuildCorpus joins encoded pieces into one sequence,
// separating consecutive pieces with sequenceLength
// delimiters.
//
// No delimiters follow the last piece.
func BuildCorpus(pieces [][]melody.Symbol, sequenceLength int) []melody.Symbol {
	var res []melody.Symbol
	for i, piece := range pieces {
		if i > 0 {
			res = append(res, melody.Repeat(melody.Delimiter, sequenceLength)...)
		}
		res = append(res, piece...)
	}
	return res
}

// TrainingSequences slides a window of sequenceLength over
// the corpus, producing len(corpus)-sequenceLength
// examples.
//
// The inputs share memory with corpusIndices.
func TrainingSequences(corpusIndices []int, sequenceLength int) ([]Example, error) {
	if sequenceLength < 1 {
		return nil, fmt.Errorf("training sequences: invalid sequence length %d",
			sequenceLength)
	}
	if len(corpusIndices) <= sequenceLength {
		return nil, fmt.Errorf("training sequences: %w (%d symbols for window %d)",
			ErrCorpusTooShort, len(corpusIndices), sequenceLength)
	}
	res := make([]Example, len(corpusIndices)-sequenceLength)
	for i := range res {
		res[i] = Example{
			Input: corpusIndices[i : i+sequenceLength],
			Label: corpusIndices[i+sequenceLength],
		}
	}
	return res, nil
}

// Generate maps a corpus through a vocabulary and windows
// the resulting indices.
func Generate(corpus []melody.Symbol, v *vocab.Vocabulary,
	sequenceLength int) ([]Example, error) {
	indices, err := v.ToIndices(corpus)
	if err != nil {
		return nil, fmt.Errorf("generate windows: %w", err)
	}
	return TrainingSequences(indices, sequenceLength)
}

// WriteCorpus saves a corpus as a single encoded-song
// file.
func WriteCorpus(path string, corpus []melody.Symbol) error {
	if err := melody.WriteSymbolFile(path, corpus); err != nil {
		return essentials.AddCtx("write corpus", err)
	}
	return nil
}

// ReadCorpus loads a corpus saved by WriteCorpus.
func ReadCorpus(path string) ([]melody.Symbol, error) {
	res, err := melody.ReadSymbolFile(path)
	if err != nil {
		return nil, essentials.AddCtx("read corpus", err)
	}
	return res, nil
}
