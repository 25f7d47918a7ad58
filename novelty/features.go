// Package novelty measures how far a generated melody is
// from a reference corpus using dynamic time warping.
package novelty

import "github.com/ankurju/melody"

// A Feature describes one note or rest: the pitch (0 for
// rests), the run length in steps, and the step offset at
// which it starts.
type Feature [3]float64

// ExtractFeatures turns an encoded sequence into one
// Feature per note or rest.
//
// Holds that do not follow a note or rest, and
// delimiters, produce no feature but still advance the
// offset.
func ExtractFeatures(symbols []melody.Symbol) []Feature {
	var res []Feature
	var offset int
	for i := 0; i < len(symbols); {
		sym := symbols[i]
		j := i + 1
		for j < len(symbols) && symbols[j] == melody.Hold {
			j++
		}
		run := j - i
		switch {
		case sym == melody.Rest:
			res = append(res, Feature{0, float64(run), float64(offset)})
		case sym.IsPitch():
			res = append(res, Feature{float64(sym), float64(run), float64(offset)})
		}
		offset += run
		i = j
	}
	return res
}
