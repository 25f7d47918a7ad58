package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/ankurju/melody/seqtrain"
)

var (
	// ErrInvalidTemperature is returned for temperatures
	// which are not strictly positive.
	ErrInvalidTemperature = errors.New("temperature must be positive")

	// ErrBadDistribution is returned when a model produces
	// something that cannot be sampled from.
	ErrBadDistribution = errors.New("bad probability distribution")
)

// A Sampler picks an index from a probability vector.
type Sampler interface {
	Sample(probs []float64, temperature float64) (int, error)
}

// TemperatureSampler re-weights the distribution as
// softmax(log(p)/T) and draws one index from it.
//
// Low temperatures approach argmax and high temperatures
// approach a uniform choice over the support.
type TemperatureSampler struct {
	// Rand is the random source.
	// If nil, the global math/rand source is used.
	//
	// A *rand.Rand is not safe for concurrent use.
	Rand *rand.Rand
}

// Sample draws an index.
func (t *TemperatureSampler) Sample(probs []float64, temperature float64) (int, error) {
	if err := checkTemperature(temperature); err != nil {
		return 0, err
	}
	if err := checkDistribution(probs); err != nil {
		return 0, err
	}

	logits := make([]float64, len(probs))
	maxLogit := math.Inf(-1)
	for i, p := range probs {
		logits[i] = math.Log(p) / temperature
		maxLogit = math.Max(maxLogit, logits[i])
	}
	weights := make([]float64, len(probs))
	var total float64
	for i, l := range logits {
		weights[i] = math.Exp(l - maxLogit)
		total += weights[i]
	}

	r := t.float64() * total
	last := 0
	for i, w := range weights {
		if w == 0 {
			continue
		}
		last = i
		r -= w
		if r < 0 {
			return i, nil
		}
	}
	return last, nil
}

func (t *TemperatureSampler) float64() float64 {
	if t.Rand == nil {
		return rand.Float64()
	}
	return t.Rand.Float64()
}

// ArgmaxSampler always picks the most likely index.
// The temperature is validated and otherwise ignored.
type ArgmaxSampler struct{}

// Sample returns the index of the largest probability.
func (ArgmaxSampler) Sample(probs []float64, temperature float64) (int, error) {
	if err := checkTemperature(temperature); err != nil {
		return 0, err
	}
	if err := checkDistribution(probs); err != nil {
		return 0, err
	}
	return seqtrain.Argmax(probs), nil
}

func checkTemperature(temperature float64) error {
	if !(temperature > 0) || math.IsInf(temperature, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidTemperature, temperature)
	}
	return nil
}

func checkDistribution(probs []float64) error {
	if len(probs) == 0 {
		return fmt.Errorf("%w: empty", ErrBadDistribution)
	}
	var positive bool
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || math.IsInf(p, 0) {
			return fmt.Errorf("%w: probability %d is %v", ErrBadDistribution, i, p)
		}
		if p > 0 {
			positive = true
		}
	}
	if !positive {
		return fmt.Errorf("%w: no positive mass", ErrBadDistribution)
	}
	return nil
}
