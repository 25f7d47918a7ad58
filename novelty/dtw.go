package novelty

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DTW computes the exact dynamic time warping cost between
// two feature sequences, using the Euclidean distance
// between features as the local cost.
//
// The cost of two empty sequences is 0, and the cost
// between an empty and a non-empty sequence is +Inf.
func DTW(a, b []Feature) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	} else if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}

	prev := make([]float64, len(b)+1)
	cur := make([]float64, len(b)+1)
	for j := 1; j <= len(b); j++ {
		prev[j] = math.Inf(1)
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = math.Inf(1)
		for j := 1; j <= len(b); j++ {
			cost := floats.Distance(a[i-1][:], b[j-1][:], 2)
			cur[j] = cost + math.Min(prev[j-1], math.Min(prev[j], cur[j-1]))
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
