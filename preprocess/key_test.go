package preprocess

import (
	"testing"

	"github.com/ankurju/melody"
)

func TestParseKey(t *testing.T) {
	cases := map[string]Key{
		"C":        {Tonic: 0},
		"G major":  {Tonic: 7},
		"f# minor": {Tonic: 6, Minor: true},
		"Bb Major": {Tonic: 10},
		"e- minor": {Tonic: 3, Minor: true},
		"Cb":       {Tonic: 11},
	}
	for s, expected := range cases {
		actual, err := ParseKey(s)
		if err != nil {
			t.Errorf("%s: %v", s, err)
		} else if actual != expected {
			t.Errorf("%s: expected %v but got %v", s, expected, actual)
		}
	}
	for _, s := range []string{"", "H major", "C dorian", "C# major extra", "Cx"} {
		if _, err := ParseKey(s); err == nil {
			t.Errorf("%q: expected error", s)
		}
	}
}

func TestKeyInterval(t *testing.T) {
	cases := []struct {
		key      Key
		interval int
	}{
		{Key{Tonic: 0}, 0},
		{Key{Tonic: 2}, -2},
		{Key{Tonic: 11}, -11},
		{Key{Tonic: 9, Minor: true}, 0},
		{Key{Tonic: 4, Minor: true}, 5},
	}
	for _, c := range cases {
		if actual := c.key.Interval(); actual != c.interval {
			t.Errorf("%v: expected %d but got %d", c.key, c.interval, actual)
		}
	}
	if s := (Key{Tonic: 6, Minor: true}).String(); s != "F# minor" {
		t.Errorf("expected F# minor but got %q", s)
	}
}

func scale(pitches []int, durations []float64) []melody.Event {
	res := make([]melody.Event, len(pitches))
	for i, p := range pitches {
		res[i] = melody.Note(p, durations[i])
	}
	return res
}

func TestEstimateKey(t *testing.T) {
	durations := []float64{4, 1, 2, 1, 2, 1, 1, 2}
	cases := []struct {
		pitches []int
		key     Key
	}{
		{[]int{60, 62, 64, 65, 67, 69, 71, 72}, Key{Tonic: 0}},
		{[]int{69, 71, 72, 74, 76, 77, 68, 69}, Key{Tonic: 9, Minor: true}},
		{[]int{67, 69, 71, 72, 74, 76, 78, 79}, Key{Tonic: 7}},
	}
	for _, c := range cases {
		events := append(scale(c.pitches, durations), melody.RestEvent(1))
		key, err := EstimateKey(events)
		if err != nil {
			t.Fatal(err)
		}
		if key != c.key {
			t.Errorf("%v: expected %v but got %v", c.pitches, c.key, key)
		}
	}

	if _, err := EstimateKey([]melody.Event{melody.RestEvent(1)}); err == nil {
		t.Error("expected error for rests only")
	}
}
