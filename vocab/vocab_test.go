package vocab

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ankurju/melody"
	"github.com/unixpickle/serializer"
)

const testCorpus = "60 _ _ r 62 _ / / / 64 _ 60 r _"

func mustBuild(t *testing.T, corpus string) *Vocabulary {
	v, err := Build(corpus)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestBuildSorted(t *testing.T) {
	v := mustBuild(t, testCorpus)
	expected := []string{"/", "60", "62", "64", "_", "r"}
	if actual := v.Symbols(); !reflect.DeepEqual(actual, expected) {
		t.Errorf("expected %v but got %v", expected, actual)
	}
	for i := 0; i < 10; i++ {
		if !v.Equal(mustBuild(t, testCorpus)) {
			t.Fatal("build is not deterministic")
		}
	}

	symbols, err := melody.ParseSymbols(testCorpus)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Equal(FromSymbols(symbols)) {
		t.Error("FromSymbols disagrees with Build")
	}
}

func TestBuildCanonical(t *testing.T) {
	v := mustBuild(t, "+60 060 _ r /")
	expected := []string{"/", "60", "_", "r"}
	if actual := v.Symbols(); !reflect.DeepEqual(actual, expected) {
		t.Fatalf("expected %v but got %v", expected, actual)
	}
	for idx := 0; idx < v.Len(); idx++ {
		sym, err := v.ToSymbol(idx)
		if err != nil {
			t.Fatal(err)
		}
		idx1, err := v.Index(sym)
		if err != nil {
			t.Fatal(err)
		}
		if idx1 != idx {
			t.Errorf("symbol %v: expected index %d but got %d", sym, idx, idx1)
		}
	}
	if idx, err := v.TokenIndex("+60"); err != nil || idx != 1 {
		t.Errorf("expected index 1 but got %d (%v)", idx, err)
	}

	if _, err := Build("60 x"); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestIndexRoundTrip(t *testing.T) {
	v := mustBuild(t, testCorpus)
	symbols, err := melody.ParseSymbols(testCorpus)
	if err != nil {
		t.Fatal(err)
	}

	indices, err := v.ToIndices(symbols)
	if err != nil {
		t.Fatal(err)
	}
	if len(indices) != len(symbols) {
		t.Fatalf("expected %d indices but got %d", len(symbols), len(indices))
	}
	for i, idx := range indices {
		sym, err := v.ToSymbol(idx)
		if err != nil {
			t.Fatal(err)
		}
		if sym != symbols[i] {
			t.Errorf("index %d: expected %v but got %v", i, symbols[i], sym)
		}
	}
}

func TestLookupErrors(t *testing.T) {
	v := mustBuild(t, testCorpus)

	_, err := v.ToIndices([]melody.Symbol{60, 61})
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol but got %v", err)
	}
	var symErr *UnknownSymbolError
	if !errors.As(err, &symErr) {
		t.Fatalf("expected *UnknownSymbolError but got %T", err)
	}
	if symErr.Symbol != "61" {
		t.Errorf("expected symbol 61 but got %q", symErr.Symbol)
	}

	for _, idx := range []int{-1, v.Len()} {
		if _, err := v.ToSymbol(idx); !errors.Is(err, ErrUnknownIndex) {
			t.Errorf("index %d: expected ErrUnknownIndex but got %v", idx, err)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	v := mustBuild(t, testCorpus)
	dir := t.TempDir()
	for _, name := range []string{"mapping.json", "mapping.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := v.Save(path); err != nil {
				t.Fatal(err)
			}
			v1, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(v.Mapping(), v1.Mapping()) {
				t.Errorf("expected %v but got %v", v.Mapping(), v1.Mapping())
			}
			if !v.Equal(v1) {
				t.Error("loaded vocabulary differs")
			}
		})
	}
}

func TestFromMappingValidation(t *testing.T) {
	v, err := FromMapping(map[string]int{"60": 0, "r": 1, "_": 2, "/": 3})
	if err != nil {
		t.Fatal(err)
	}
	sym, err := v.ToSymbol(3)
	if err != nil {
		t.Fatal(err)
	}
	if sym != melody.Delimiter {
		t.Errorf("expected delimiter but got %v", sym)
	}

	v, err = FromMapping(map[string]int{"+60": 0, "r": 1})
	if err != nil {
		t.Fatal(err)
	}
	if idx, err := v.Index(60); err != nil || idx != 0 {
		t.Errorf("expected index 0 but got %d (%v)", idx, err)
	}

	for _, m := range []map[string]int{
		{"60": 0, "r": 2},
		{"60": 1, "r": 1},
		{"60": 0, "x": 1},
		{"60": 0, "060": 1},
		{"": 0},
	} {
		if _, err := FromMapping(m); err == nil {
			t.Errorf("%v: expected error", m)
		}
	}
}

func TestSerialize(t *testing.T) {
	v := mustBuild(t, testCorpus)
	data, err := serializer.SerializeAny(v)
	if err != nil {
		t.Fatal(err)
	}
	var v1 *Vocabulary
	if err := serializer.DeserializeAny(data, &v1); err != nil {
		t.Fatal(err)
	}
	if !v.Equal(v1) {
		t.Error("deserialized vocabulary differs")
	}
}
