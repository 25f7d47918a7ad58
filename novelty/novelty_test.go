package novelty

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ankurju/melody"
)

func parse(t *testing.T, s string) []melody.Symbol {
	res, err := melody.ParseSymbols(s)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestExtractFeatures(t *testing.T) {
	actual := ExtractFeatures(parse(t, "60 _ _ r 62 _ / / 64"))
	expected := []Feature{
		{60, 3, 0},
		{0, 1, 3},
		{62, 2, 4},
		{64, 1, 8},
	}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("expected %v but got %v", expected, actual)
	}
}

func TestExtractFeaturesLeadingHold(t *testing.T) {
	actual := ExtractFeatures(parse(t, "_ _ 60 _ r"))
	expected := []Feature{
		{60, 2, 2},
		{0, 1, 4},
	}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("expected %v but got %v", expected, actual)
	}
	if res := ExtractFeatures(nil); len(res) != 0 {
		t.Errorf("expected no features but got %v", res)
	}
}

func TestDTW(t *testing.T) {
	a := []Feature{{60, 1, 0}, {62, 1, 1}}
	if cost := DTW(a, a); cost != 0 {
		t.Errorf("expected 0 but got %f", cost)
	}

	// Warping lets b's repeated note match a's single note.
	b := []Feature{{60, 1, 0}, {60, 1, 0}, {62, 1, 1}}
	if cost := DTW(a, b); cost != 0 {
		t.Errorf("expected 0 but got %f", cost)
	}

	c := []Feature{{63, 1, 0}}
	expected := 3 + math.Sqrt(1+1)
	if cost := DTW(a, c); math.Abs(cost-expected) > 1e-9 {
		t.Errorf("expected %f but got %f", expected, cost)
	}

	if !math.IsInf(DTW(a, nil), 1) {
		t.Error("expected infinite cost against an empty sequence")
	}
}

func TestScore(t *testing.T) {
	a := ExtractFeatures(parse(t, "60 _ 62 _ 64 _ _ _"))
	b := ExtractFeatures(parse(t, "67 _ _ _ 65 r 64 _"))

	if s := Score(a, a); s != 1 {
		t.Errorf("expected 1 but got %f", s)
	}
	if s := Score(a, nil); s != 0 {
		t.Errorf("expected 0 but got %f", s)
	}
	if s := Score(nil, a); s != 0 {
		t.Errorf("expected 0 but got %f", s)
	}

	s1, s2 := Score(a, b), Score(b, a)
	if math.Abs(s1-s2) > 1e-12 {
		t.Errorf("score is not symmetric: %f vs %f", s1, s2)
	}
	if s1 <= 0 || s1 >= 1 {
		t.Errorf("score out of range: %f", s1)
	}
}

func TestScoreRange(t *testing.T) {
	gen := rand.New(rand.NewSource(1))
	randomFeatures := func() []Feature {
		res := make([]Feature, gen.Intn(10))
		for i := range res {
			res[i] = Feature{float64(gen.Intn(128)), float64(gen.Intn(8) + 1), float64(i * 4)}
		}
		return res
	}
	for i := 0; i < 200; i++ {
		s := Score(randomFeatures(), randomFeatures())
		if s < 0 || s > 1 {
			t.Fatalf("score out of range: %f", s)
		}
	}
}

func TestAnalyze(t *testing.T) {
	gen := []Feature{{60, 1, 0}, {62, 1, 1}}
	refs := [][]Feature{
		gen,
		nil,
		{{60, 1, 0}, {63, 1, 1}},
	}
	stats := Analyze(gen, refs)
	scores := []float64{1, 0, 1 / (1 + 1.0/2)}
	mean := (scores[0] + scores[1] + scores[2]) / 3
	var variance float64
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	std := math.Sqrt(variance / 3)

	if math.Abs(stats.Mean-mean) > 1e-9 || math.Abs(stats.Std-std) > 1e-9 {
		t.Errorf("expected mean %f std %f but got %+v", mean, std, stats)
	}
	if stats.Max != 1 || stats.Min != 0 {
		t.Errorf("unexpected bounds: %+v", stats)
	}

	if empty := Analyze(gen, nil); empty != (Stats{}) {
		t.Errorf("expected zero stats but got %+v", empty)
	}
}

func TestAnalyzeConcurrent(t *testing.T) {
	gen := ExtractFeatures(parse(t, "60 _ 62 _ 64 _ 65 67"))
	var refs [][]Feature
	for _, s := range []string{"60 _ 62", "64 _ _ r", "72 71 69 67", "60 _ 62 _ 64 _ 65 67"} {
		refs = append(refs, ExtractFeatures(parse(t, s)))
	}
	stats, err := AnalyzeConcurrent(context.Background(), gen, refs, 2)
	if err != nil {
		t.Fatal(err)
	}
	expected := Analyze(gen, refs)
	if math.Abs(stats.Mean-expected.Mean) > 1e-12 || math.Abs(stats.Std-expected.Std) > 1e-12 ||
		stats.Max != expected.Max || stats.Min != expected.Min {
		t.Errorf("expected %+v but got %+v", expected, stats)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := AnalyzeConcurrent(ctx, gen, refs, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled but got %v", err)
	}
}

func TestLoadReferences(t *testing.T) {
	dir := t.TempDir()
	songs := map[string]string{
		"0": "60 _ r",
		"1": "62 _ _ 64",
	}
	for name, s := range songs {
		if err := melody.WriteSymbolFile(filepath.Join(dir, name), parse(t, s)); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatal(err)
	}
	refs, err := LoadReferences(dir)
	if err != nil {
		t.Fatal(err)
	}
	expected := [][]Feature{
		{{60, 2, 0}, {0, 1, 2}},
		{{62, 3, 0}, {64, 1, 3}},
	}
	if !reflect.DeepEqual(refs, expected) {
		t.Errorf("expected %v but got %v", expected, refs)
	}

	if _, err := LoadReferences(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}
