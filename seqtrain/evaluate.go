package seqtrain

import (
	"errors"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet/anys2v"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

// Evaluation summarizes a model's performance on held out
// samples.
type Evaluation struct {
	// Loss is the mean per-sample cost.
	Loss float64

	// Accuracy is the fraction of samples whose most likely
	// output matches the desired one-hot output.
	Accuracy float64

	NumSamples int
}

// Evaluate computes the mean cost and the classification
// accuracy of t.Func over the list, in batches of at most
// batchSize samples.
//
// No gradients are computed and t.LastCost is untouched.
func Evaluate(t *anys2v.Trainer, s anys2v.SampleList, batchSize int) (*Evaluation, error) {
	if s.Len() == 0 {
		return nil, errors.New("evaluate: empty sample list")
	}
	if batchSize <= 0 {
		batchSize = s.Len()
	}
	var totalCost float64
	var correct int
	for i := 0; i < s.Len(); i += batchSize {
		end := min(s.Len(), i+batchSize)
		batch, err := t.Fetch(s.Slice(i, end))
		if err != nil {
			return nil, essentials.AddCtx("evaluate", err)
		}
		b := batch.(*anys2v.Batch)
		out := t.Func(b.Inputs)
		cost := anydiff.Sum(t.Cost.Cost(b.Outputs, out, end-i))
		totalCost += Floats(cost.Output())[0]
		correct += countCorrect(out.Output(), b.Outputs.Output(), end-i)
	}
	return &Evaluation{
		Loss:       totalCost / float64(s.Len()),
		Accuracy:   float64(correct) / float64(s.Len()),
		NumSamples: s.Len(),
	}, nil
}

// Floats copies a vector's components into a []float64.
func Floats(v anyvec.Vector) []float64 {
	switch data := v.Data().(type) {
	case []float64:
		return data
	case []float32:
		res := make([]float64, len(data))
		for i, x := range data {
			res[i] = float64(x)
		}
		return res
	default:
		panic("unsupported numeric type")
	}
}

// Argmax returns the index of the largest value.
// Ties go to the lowest index.
func Argmax(values []float64) int {
	best := 0
	for i, x := range values[1:] {
		if x > values[best] {
			best = i + 1
		}
	}
	return best
}

func countCorrect(actual, desired anyvec.Vector, n int) int {
	a := Floats(actual)
	d := Floats(desired)
	cols := len(a) / n
	var res int
	for i := 0; i < n; i++ {
		row := i * cols
		if Argmax(a[row:row+cols]) == Argmax(d[row:row+cols]) {
			res++
		}
	}
	return res
}
