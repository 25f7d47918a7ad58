// Package melody implements a fixed-timestep symbolic
// encoding for monophonic melodies.
// It includes sub-packages for building vocabularies,
// windowing training data, training sequence models,
// sampling new melodies, and measuring their novelty.
package melody

import (
	"fmt"
	"strconv"
)

// Reserved symbol values.
const (
	// Rest marks silence for one or more steps.
	Rest Symbol = -1 - iota

	// Hold means "the previous event continues for one
	// more step".
	Hold

	// Delimiter separates pieces in a corpus and marks the
	// end of a generated piece.
	Delimiter
)

// Textual forms of the reserved symbols.
const (
	RestToken      = "r"
	HoldToken      = "_"
	DelimiterToken = "/"
)

// MaxPitch is the largest MIDI pitch a Symbol may hold.
const MaxPitch = 127

// A Symbol is one step of an encoded melody.
// Non-negative values are MIDI pitches; negative values
// are the reserved markers Rest, Hold, and Delimiter.
type Symbol int

// Pitch creates a pitch symbol.
// It panics if p is not a valid MIDI pitch.
func Pitch(p int) Symbol {
	if p < 0 || p > MaxPitch {
		panic(fmt.Sprintf("pitch out of range: %d", p))
	}
	return Symbol(p)
}

// ParseSymbol parses the textual form of a symbol.
func ParseSymbol(s string) (Symbol, error) {
	switch s {
	case RestToken:
		return Rest, nil
	case HoldToken:
		return Hold, nil
	case DelimiterToken:
		return Delimiter, nil
	}
	p, err := strconv.Atoi(s)
	if err != nil || p < 0 || p > MaxPitch {
		return 0, fmt.Errorf("parse symbol: invalid token %q", s)
	}
	return Symbol(p), nil
}

// IsPitch checks if the symbol is a MIDI pitch.
func (s Symbol) IsPitch() bool {
	return s >= 0 && s <= MaxPitch
}

// IsEvent checks if the symbol starts a musical event,
// i.e. if it is a pitch or a rest.
func (s Symbol) IsEvent() bool {
	return s == Rest || s.IsPitch()
}

// String returns the token used for s in encoded files.
func (s Symbol) String() string {
	switch s {
	case Rest:
		return RestToken
	case Hold:
		return HoldToken
	case Delimiter:
		return DelimiterToken
	}
	if s.IsPitch() {
		return strconv.Itoa(int(s))
	}
	return fmt.Sprintf("Symbol(%d)", int(s))
}

// Repeat creates a slice containing n copies of s.
func Repeat(s Symbol, n int) []Symbol {
	res := make([]Symbol, n)
	for i := range res {
		res[i] = s
	}
	return res
}
