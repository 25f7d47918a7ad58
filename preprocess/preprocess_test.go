package preprocess

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ankurju/melody"
	"github.com/ankurju/melody/vocab"
	"github.com/ankurju/melody/window"
)

func writeDataset(t *testing.T) string {
	dir := t.TempDir()
	files := map[string]string{
		"a.events":     "# key: D major\n62 1\n64 0.5\n66 0.5\nr 1\n",
		"b.events":     "60 0.3\n62 1\n",
		"bad.events":   "60 abc\n",
		"sub/c.events": "# key: C major\n67 2\n65 1\n",
		"notes.txt":    "not a song\n",
	}
	for name, contents := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadPieces(t *testing.T) {
	dir := writeDataset(t)
	pieces, skipped, err := LoadPieces(dir)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, p := range pieces {
		names = append(names, p.Name)
	}
	expected := []string{"a.events", "b.events", filepath.Join("sub", "c.events")}
	if !reflect.DeepEqual(names, expected) {
		t.Fatalf("expected %v but got %v", expected, names)
	}
	if pieces[0].Key == nil || *pieces[0].Key != (Key{Tonic: 2}) {
		t.Errorf("expected D major but got %v", pieces[0].Key)
	}
	if pieces[1].Key != nil {
		t.Errorf("expected no key but got %v", *pieces[1].Key)
	}

	if len(skipped) != 1 || skipped[0].Name != "bad.events" {
		t.Errorf("expected bad.events to be skipped but got %v", skipped)
	}
}

func TestPipeline(t *testing.T) {
	dir := writeDataset(t)
	out := t.TempDir()
	var logs bytes.Buffer
	p := &Pipeline{
		DatasetPath:    dir,
		SaveDir:        filepath.Join(out, "dataset"),
		CorpusPath:     filepath.Join(out, "file_dataset"),
		MappingPath:    filepath.Join(out, "mapping.json"),
		SequenceLength: 2,
		Options: Options{
			TimeStep:            melody.DefaultTimeStep,
			AcceptableDurations: melody.AcceptableDurations,
			Transpose:           true,
			Workers:             2,
			Logger:              log.New(&logs, "", 0),
		},
	}
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if report.Loaded != 4 || report.Encoded != 2 {
		t.Errorf("expected 4 loaded and 2 encoded but got %d and %d",
			report.Loaded, report.Encoded)
	}
	if len(report.Skipped) != 2 {
		t.Fatalf("expected 2 skipped pieces but got %v", report.Skipped)
	}
	if report.Skipped[0].Name != "bad.events" || report.Skipped[1].Name != "b.events" {
		t.Errorf("unexpected skipped pieces %v", report.Skipped)
	}
	if !strings.Contains(logs.String(), "Skipping b.events") {
		t.Errorf("missing skip log in %q", logs.String())
	}

	song0, err := melody.ReadSymbolFile(filepath.Join(p.SaveDir, "0"))
	if err != nil {
		t.Fatal(err)
	}
	if s := melody.FormatSymbols(song0); s != "60 _ _ _ 62 _ 64 _ r _ _ _" {
		t.Errorf("unexpected song 0: %q", s)
	}
	song1, err := melody.ReadSymbolFile(filepath.Join(p.SaveDir, "1"))
	if err != nil {
		t.Fatal(err)
	}
	if s := melody.FormatSymbols(song1); s != "67 _ _ _ _ _ _ _ 65 _ _ _" {
		t.Errorf("unexpected song 1: %q", s)
	}

	corpus, err := window.ReadCorpus(p.CorpusPath)
	if err != nil {
		t.Fatal(err)
	}
	expectedCorpus := melody.FormatSymbols(song0) + " / / " + melody.FormatSymbols(song1)
	if s := melody.FormatSymbols(corpus); s != expectedCorpus {
		t.Errorf("expected corpus %q but got %q", expectedCorpus, s)
	}
	if report.CorpusLen != len(corpus) {
		t.Errorf("expected corpus length %d but got %d", len(corpus), report.CorpusLen)
	}

	v, err := vocab.Load(p.MappingPath)
	if err != nil {
		t.Fatal(err)
	}
	expectedSymbols := []string{"/", "60", "62", "64", "65", "67", "_", "r"}
	if !reflect.DeepEqual(v.Symbols(), expectedSymbols) {
		t.Errorf("expected %v but got %v", expectedSymbols, v.Symbols())
	}
	if report.VocabSize != v.Len() {
		t.Errorf("expected vocab size %d but got %d", v.Len(), report.VocabSize)
	}
}

func TestEncodePiecesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pieces := []Piece{{Name: "x", Events: []melody.Event{melody.Note(60, 1)}}}
	if _, _, err := EncodePieces(ctx, pieces, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled but got %v", err)
	}
}

func TestEncodePieceWithoutTranspose(t *testing.T) {
	pieces := []Piece{
		{Name: "x", Events: []melody.Event{melody.Note(61, 0.5), melody.RestEvent(0.25)}},
		{Name: "y", Events: []melody.Event{melody.Note(127, 0.5)}, Key: &Key{Tonic: 11}},
	}
	songs, report, err := EncodePieces(context.Background(), pieces, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(songs) != 2 || len(report.Skipped) != 0 {
		t.Fatalf("expected 2 songs and no skips but got %d and %v", len(songs), report.Skipped)
	}
	if s := melody.FormatSymbols(songs[0]); s != "61 _ r" {
		t.Errorf("expected %q but got %q", "61 _ r", s)
	}

	// Transposing B major to C major moves 127 down to 116.
	songs, report, err = EncodePieces(context.Background(), pieces[1:],
		Options{Transpose: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Skipped) != 0 {
		t.Errorf("unexpected skips %v", report.Skipped)
	}
	if s := melody.FormatSymbols(songs[0]); s != "116 _" {
		t.Errorf("expected %q but got %q", "116 _", s)
	}
}
