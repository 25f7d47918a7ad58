// Package seqtrain configures and evaluates the training
// of sequence-to-vector models built with anysgd and
// anys2v.
package seqtrain

import (
	"fmt"

	"github.com/unixpickle/anynet/anysgd"
)

// NewTransformer creates a fresh gradient transformer by
// name: "adam", "rmsprop", "momentum" or "sgd".
// The "sgd" transformer is nil, meaning plain steps.
func NewTransformer(name string) (anysgd.Transformer, error) {
	switch name {
	case "adam":
		return &anysgd.Adam{}, nil
	case "rmsprop":
		return &anysgd.RMSProp{}, nil
	case "momentum":
		return &anysgd.Momentum{Momentum: 0.9}, nil
	case "sgd":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown optimizer: %s", name)
	}
}

// Epoch returns the fractional number of passes s has made
// over its samples.
func Epoch(s *anysgd.SGD) float64 {
	return float64(s.NumProcessed) / float64(s.Samples.Len())
}
