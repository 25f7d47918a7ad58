package melody

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/unixpickle/essentials"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// An Exporter writes a decoded melody to a file.
type Exporter interface {
	Export(path string, events []Event) error

	// Extension is the file extension, including the dot,
	// that the exporter expects.
	Extension() string
}

// ExporterFor returns the exporter for a format name.
// Supported formats are "text", "json" and "midi".
func ExporterFor(format string) (Exporter, error) {
	switch format {
	case "text", "events":
		return TextExporter{}, nil
	case "json":
		return JSONExporter{Indent: true}, nil
	case "midi", "mid":
		return MIDIExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown export format: %s", format)
	}
}

// TextExporter writes the format read by ReadEvents.
type TextExporter struct{}

// Export writes the events to path.
func (t TextExporter) Export(path string, events []Event) error {
	f, err := os.Create(path)
	if err != nil {
		return essentials.AddCtx("export events", err)
	}
	if err := WriteEvents(f, events); err != nil {
		f.Close()
		return essentials.AddCtx("export events", err)
	}
	if err := f.Close(); err != nil {
		return essentials.AddCtx("export events", err)
	}
	return nil
}

// Extension returns ".events".
func (t TextExporter) Extension() string {
	return ".events"
}

// JSONExporter writes events as a JSON array of objects
// with "pitch" and "duration" fields.
// Rests have a null pitch.
type JSONExporter struct {
	Indent bool
}

type jsonEvent struct {
	Pitch    *int    `json:"pitch"`
	Duration float64 `json:"duration"`
}

// Export writes the events to path.
func (j JSONExporter) Export(path string, events []Event) error {
	objs := make([]jsonEvent, len(events))
	for i, e := range events {
		objs[i].Duration = e.Duration
		if e.Pitch.IsPitch() {
			p := int(e.Pitch)
			objs[i].Pitch = &p
		}
	}
	var data []byte
	var err error
	if j.Indent {
		data, err = json.MarshalIndent(objs, "", "  ")
	} else {
		data, err = json.Marshal(objs)
	}
	if err != nil {
		return essentials.AddCtx("export events", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return essentials.AddCtx("export events", err)
	}
	return nil
}

// Extension returns ".json".
func (j JSONExporter) Extension() string {
	return ".json"
}

// DefaultTempo is the tempo, in quarter notes per minute,
// used by a MIDIExporter with no Tempo.
const DefaultTempo = 120

// midiResolution is the number of ticks per quarter note.
const midiResolution = 480

// MIDIExporter writes a single-track Standard MIDI File.
// Notes are played on channel 0 and rests become gaps
// between notes.
type MIDIExporter struct {
	// Tempo is in quarter notes per minute.
	// If it is 0, DefaultTempo is used.
	Tempo float64

	// Velocity is the note-on velocity.
	// If it is 0, 100 is used.
	Velocity uint8
}

// Export writes the events to path.
func (m MIDIExporter) Export(path string, events []Event) error {
	tempo := m.Tempo
	if tempo == 0 {
		tempo = DefaultTempo
	}
	velocity := m.Velocity
	if velocity == 0 {
		velocity = 100
	}
	clock := smf.MetricTicks(midiResolution)

	var track smf.Track
	track.Add(0, smf.MetaMeter(4, 4))
	track.Add(0, smf.MetaTempo(tempo))
	var delta uint32
	for _, e := range events {
		ticks := uint32(math.Round(e.Duration * float64(clock.Ticks4th())))
		if !e.Pitch.IsPitch() {
			delta += ticks
			continue
		}
		key := uint8(e.Pitch)
		track.Add(delta, midi.NoteOn(0, key, velocity))
		track.Add(ticks, midi.NoteOff(0, key))
		delta = 0
	}
	track.Close(delta)

	s := smf.New()
	s.TimeFormat = clock
	if err := s.Add(track); err != nil {
		return essentials.AddCtx("export midi", err)
	}
	if err := s.WriteFile(path); err != nil {
		return essentials.AddCtx("export midi", err)
	}
	return nil
}

// Extension returns ".mid".
func (m MIDIExporter) Extension() string {
	return ".mid"
}
