package melody

import "math"

// DefaultTimeStep is the default encoding granularity,
// measured in quarter notes.
const DefaultTimeStep = 0.25

// AcceptableDurations lists the durations, in quarter
// notes, that the corpus tooling accepts by default.
var AcceptableDurations = []float64{0.25, 0.5, 0.75, 1, 1.5, 2, 3, 4}

// An Event is a single note or rest.
type Event struct {
	// Pitch is either a pitch symbol or Rest.
	Pitch Symbol

	// Duration is measured in quarter notes.
	Duration float64
}

// Note creates a pitched event.
func Note(pitch int, duration float64) Event {
	return Event{Pitch: Pitch(pitch), Duration: duration}
}

// RestEvent creates a rest event.
func RestEvent(duration float64) Event {
	return Event{Pitch: Rest, Duration: duration}
}

// HasAcceptableDurations checks that every event's
// duration appears in durations.
func HasAcceptableDurations(events []Event, durations []float64) bool {
	for _, e := range events {
		var found bool
		for _, d := range durations {
			if math.Abs(e.Duration-d) < 1e-9 {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Transpose shifts every pitch by the given number of
// semitones.
// Rests are left untouched.
//
// The input is not modified.
// It fails if a shifted pitch leaves the MIDI range.
func Transpose(events []Event, semitones int) ([]Event, error) {
	res := make([]Event, len(events))
	for i, e := range events {
		res[i] = e
		if !e.Pitch.IsPitch() {
			continue
		}
		p := int(e.Pitch) + semitones
		if p < 0 || p > MaxPitch {
			return nil, &PitchRangeError{Pitch: p}
		}
		res[i].Pitch = Symbol(p)
	}
	return res, nil
}
