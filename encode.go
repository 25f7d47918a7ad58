package melody

import (
	"errors"
	"fmt"
	"math"
)

const quantizeEpsilon = 1e-9

var (
	// ErrUnquantizableDuration is matched by errors which
	// indicate that a duration is not a whole number of
	// time steps.
	ErrUnquantizableDuration = errors.New("unquantizable duration")

	// ErrLeadingHold indicates a hold marker with no
	// preceding event to extend.
	ErrLeadingHold = errors.New("hold marker without preceding event")

	// ErrInvalidEvent indicates an event whose Pitch is
	// neither a pitch nor a rest.
	ErrInvalidEvent = errors.New("invalid event")
)

// UnquantizableDurationError reports the offending event
// of a failed Encode.
type UnquantizableDurationError struct {
	Index    int
	Duration float64
	TimeStep float64
}

func (u *UnquantizableDurationError) Error() string {
	return fmt.Sprintf("event %d: duration %v is not a multiple of time step %v",
		u.Index, u.Duration, u.TimeStep)
}

// Is allows errors.Is to match ErrUnquantizableDuration.
func (u *UnquantizableDurationError) Is(target error) bool {
	return target == ErrUnquantizableDuration
}

// PitchRangeError reports a pitch outside of the MIDI
// range.
type PitchRangeError struct {
	Pitch int
}

func (p *PitchRangeError) Error() string {
	return fmt.Sprintf("pitch %d outside of MIDI range", p.Pitch)
}

// Encode converts events into a symbol sequence with one
// symbol per time step.
//
// Each event becomes its pitch (or Rest) followed by
// enough Hold symbols to fill its duration.
func Encode(events []Event, timeStep float64) ([]Symbol, error) {
	if timeStep <= 0 || math.IsNaN(timeStep) {
		return nil, fmt.Errorf("encode: invalid time step %v", timeStep)
	}
	var res []Symbol
	for i, e := range events {
		if !e.Pitch.IsEvent() {
			return nil, fmt.Errorf("encode: event %d: %w (%v)", i, ErrInvalidEvent, e.Pitch)
		}
		steps := math.Round(e.Duration / timeStep)
		if steps < 1 || math.Abs(steps*timeStep-e.Duration) > quantizeEpsilon*timeStep {
			return nil, &UnquantizableDurationError{
				Index:    i,
				Duration: e.Duration,
				TimeStep: timeStep,
			}
		}
		res = append(res, e.Pitch)
		for j := 1; j < int(steps); j++ {
			res = append(res, Hold)
		}
	}
	return res, nil
}

// Decode converts a symbol sequence back into events.
//
// Runs of Hold symbols extend the preceding event.
// Delimiters end the current event without starting a
// new one.
// A Hold with no event to extend yields ErrLeadingHold.
func Decode(symbols []Symbol, stepDuration float64) ([]Event, error) {
	var res []Event
	var pending Symbol
	var runLength int

	flush := func() {
		if runLength > 0 {
			res = append(res, Event{
				Pitch:    pending,
				Duration: stepDuration * float64(runLength),
			})
		}
		runLength = 0
	}

	for i, s := range symbols {
		switch {
		case s == Hold:
			if runLength == 0 {
				return nil, fmt.Errorf("decode: symbol %d: %w", i, ErrLeadingHold)
			}
			runLength++
		case s == Delimiter:
			flush()
		case s.IsEvent():
			flush()
			pending = s
			runLength = 1
		default:
			return nil, fmt.Errorf("decode: symbol %d: %w (%v)", i, ErrInvalidEvent, s)
		}
	}
	flush()

	return res, nil
}
