package window

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"

	"github.com/unixpickle/anynet/anys2v"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
)

// SampleList presents Examples to an anys2v.Trainer,
// one-hot encoding them on demand.
type SampleList struct {
	Creator   anyvec.Creator
	VocabSize int
	Examples  []Example
}

// NewSampleList creates a SampleList over a copy of the
// example slice, so shuffling does not reorder the
// caller's examples.
func NewSampleList(c anyvec.Creator, vocabSize int, examples []Example) *SampleList {
	return &SampleList{
		Creator:   c,
		VocabSize: vocabSize,
		Examples:  append([]Example{}, examples...),
	}
}

// Len returns the number of examples.
func (s *SampleList) Len() int {
	return len(s.Examples)
}

// Swap swaps two examples.
func (s *SampleList) Swap(i, j int) {
	s.Examples[i], s.Examples[j] = s.Examples[j], s.Examples[i]
}

// Slice returns a copy of a sub-range of the list.
func (s *SampleList) Slice(i, j int) anysgd.SampleList {
	return NewSampleList(s.Creator, s.VocabSize, s.Examples[i:j])
}

// GetSample one-hot encodes the input window and label of
// an example.
func (s *SampleList) GetSample(idx int) (*anys2v.Sample, error) {
	ex := s.Examples[idx]
	input, err := OneHotWindow(s.Creator, ex.Input, s.VocabSize)
	if err != nil {
		return nil, err
	}
	output, err := OneHot(s.Creator, ex.Label, s.VocabSize)
	if err != nil {
		return nil, err
	}
	return &anys2v.Sample{Input: input, Output: output}, nil
}

// Hash hashes the contents of an example, making the list
// an anysgd.Hasher.
// Identical windows always hash the same.
func (s *SampleList) Hash(i int) []byte {
	ex := s.Examples[i]
	buf := make([]byte, 0, 4*(len(ex.Input)+1))
	for _, x := range ex.Input {
		buf = binary.BigEndian.AppendUint32(buf, uint32(x))
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(ex.Label))
	sum := md5.Sum(buf)
	return sum[:]
}

// OneHot creates a vector of the given size which is 1 at
// index and 0 elsewhere.
func OneHot(c anyvec.Creator, index, size int) (anyvec.Vector, error) {
	if index < 0 || index >= size {
		return nil, fmt.Errorf("one-hot: index %d out of range [0, %d)", index, size)
	}
	data := make([]float64, size)
	data[index] = 1
	return c.MakeVectorData(c.MakeNumericList(data)), nil
}

// OneHotWindow one-hot encodes every index of a window.
func OneHotWindow(c anyvec.Creator, indices []int, size int) ([]anyvec.Vector, error) {
	res := make([]anyvec.Vector, len(indices))
	for i, idx := range indices {
		v, err := OneHot(c, idx, size)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}
