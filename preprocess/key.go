package preprocess

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ankurju/melody"
	"gonum.org/v1/gonum/stat"
)

var pitchClassNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Krumhansl-Kessler key profiles, indexed by semitones
// above the tonic.
var (
	majorProfile = []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// A Key is a tonic pitch class and a mode.
type Key struct {
	// Tonic is a pitch class, 0 for C through 11 for B.
	Tonic int
	Minor bool
}

// ParseKey parses keys like "G major", "f# minor" or
// "Bb". The mode defaults to major.
func ParseKey(s string) (Key, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return Key{}, fmt.Errorf("parse key: invalid key %q", s)
	}
	tonic, err := parseTonic(fields[0])
	if err != nil {
		return Key{}, err
	}
	res := Key{Tonic: tonic}
	if len(fields) == 2 {
		switch strings.ToLower(fields[1]) {
		case "major":
		case "minor":
			res.Minor = true
		default:
			return Key{}, fmt.Errorf("parse key: unknown mode %q", fields[1])
		}
	}
	return res, nil
}

func parseTonic(s string) (int, error) {
	base := map[byte]int{'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11}
	lower := strings.ToLower(s)
	pc, ok := base[lower[0]]
	if !ok {
		return 0, fmt.Errorf("parse key: invalid tonic %q", s)
	}
	for _, ch := range lower[1:] {
		switch ch {
		case '#':
			pc++
		case 'b', '-':
			pc--
		default:
			return 0, fmt.Errorf("parse key: invalid tonic %q", s)
		}
	}
	return (pc%12 + 12) % 12, nil
}

// String formats the key like "G major".
func (k Key) String() string {
	mode := "major"
	if k.Minor {
		mode = "minor"
	}
	return pitchClassNames[k.Tonic] + " " + mode
}

// Interval returns the number of semitones which moves
// the key to C major or A minor, staying within the
// octave above middle C.
func (k Key) Interval() int {
	if k.Minor {
		return 9 - k.Tonic
	}
	return -k.Tonic
}

// EstimateKey finds the key whose profile best
// correlates with the melody's duration-weighted pitch
// class histogram.
func EstimateKey(events []melody.Event) (Key, error) {
	hist := make([]float64, 12)
	for _, e := range events {
		if e.Pitch.IsPitch() {
			hist[int(e.Pitch)%12] += e.Duration
		}
	}
	var best Key
	bestCorr := math.Inf(-1)
	rotated := make([]float64, 12)
	for tonic := 0; tonic < 12; tonic++ {
		for _, minor := range []bool{false, true} {
			profile := majorProfile
			if minor {
				profile = minorProfile
			}
			for pc := range rotated {
				rotated[pc] = profile[(pc-tonic+12)%12]
			}
			corr := stat.Correlation(hist, rotated, nil)
			if corr > bestCorr {
				bestCorr = corr
				best = Key{Tonic: tonic, Minor: minor}
			}
		}
	}
	if math.IsInf(bestCorr, -1) {
		return Key{}, errors.New("estimate key: no pitches")
	}
	return best, nil
}
