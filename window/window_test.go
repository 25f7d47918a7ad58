package window

import (
	"bytes"
	"errors"
	"math/rand"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ankurju/melody"
	"github.com/ankurju/melody/seqtrain"
	"github.com/ankurju/melody/vocab"
	"github.com/unixpickle/anynet/anys2v"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec/anyvec64"
)

var (
	_ anys2v.SampleList = &SampleList{}
	_ anysgd.Hasher     = &SampleList{}
)

func mustParse(t *testing.T, s string) []melody.Symbol {
	res, err := melody.ParseSymbols(s)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestBuildCorpus(t *testing.T) {
	pieces := [][]melody.Symbol{
		mustParse(t, "60 _ r"),
		mustParse(t, "62 _ _"),
		mustParse(t, "64"),
	}
	expected := "60 _ r / / / 62 _ _ / / / 64"
	if actual := melody.FormatSymbols(BuildCorpus(pieces, 3)); actual != expected {
		t.Errorf("expected %q but got %q", expected, actual)
	}
	if corpus := BuildCorpus(nil, 3); len(corpus) != 0 {
		t.Errorf("expected empty corpus but got %v", corpus)
	}
	if corpus := BuildCorpus(pieces[:1], 64); !reflect.DeepEqual(corpus, pieces[0]) {
		t.Errorf("expected %v but got %v", pieces[0], corpus)
	}
}

func TestTrainingSequences(t *testing.T) {
	corpus := []int{0, 1, 2, 3, 4, 5, 6}
	examples, err := TrainingSequences(corpus, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(examples) != 4 {
		t.Fatalf("expected 4 examples but got %d", len(examples))
	}
	for i, ex := range examples {
		if !reflect.DeepEqual(ex.Input, corpus[i:i+3]) || ex.Label != corpus[i+3] {
			t.Errorf("example %d: got %v -> %d", i, ex.Input, ex.Label)
		}
	}

	for _, n := range []int{0, 2, 3} {
		if _, err := TrainingSequences(corpus[:n], 3); !errors.Is(err, ErrCorpusTooShort) {
			t.Errorf("length %d: expected ErrCorpusTooShort but got %v", n, err)
		}
	}
	if _, err := TrainingSequences(corpus, 0); err == nil {
		t.Error("expected error for zero sequence length")
	}
}

func TestGenerate(t *testing.T) {
	corpus := mustParse(t, "60 _ r / / 62 _")
	v := vocab.FromSymbols(corpus)
	examples, err := Generate(corpus, v, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(examples) != 5 {
		t.Fatalf("expected 5 examples but got %d", len(examples))
	}
	label, err := v.ToSymbol(examples[2].Label)
	if err != nil {
		t.Fatal(err)
	}
	if label != melody.Delimiter {
		t.Errorf("expected delimiter label but got %v", label)
	}

	_, err = Generate(mustParse(t, "60 61 62"), v, 1)
	if !errors.Is(err, vocab.ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol but got %v", err)
	}
}

func TestCorpusFile(t *testing.T) {
	corpus := BuildCorpus([][]melody.Symbol{
		mustParse(t, "60 _ _ r"),
		mustParse(t, "67 _ 65 _"),
	}, 4)
	path := filepath.Join(t.TempDir(), "file_dataset")
	if err := WriteCorpus(path, corpus); err != nil {
		t.Fatal(err)
	}
	actual, err := ReadCorpus(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(actual, corpus) {
		t.Errorf("expected %v but got %v", corpus, actual)
	}

	if _, err := ReadCorpus(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSampleList(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	examples := []Example{
		{Input: []int{0, 2}, Label: 1},
		{Input: []int{2, 1}, Label: 0},
		{Input: []int{0, 2}, Label: 1},
	}
	list := NewSampleList(c, 3, examples)
	if list.Len() != 3 {
		t.Fatalf("expected 3 samples but got %d", list.Len())
	}

	sample, err := list.GetSample(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sample.Input) != 2 {
		t.Fatalf("expected 2 timesteps but got %d", len(sample.Input))
	}
	expected := [][]float64{{0, 0, 1}, {0, 1, 0}}
	for i, x := range expected {
		if actual := seqtrain.Floats(sample.Input[i]); !reflect.DeepEqual(actual, x) {
			t.Errorf("timestep %d: expected %v but got %v", i, x, actual)
		}
	}
	if actual := seqtrain.Floats(sample.Output); !reflect.DeepEqual(actual, []float64{1, 0, 0}) {
		t.Errorf("unexpected output %v", actual)
	}

	if !bytes.Equal(list.Hash(0), list.Hash(2)) {
		t.Error("identical windows should hash the same")
	}
	if bytes.Equal(list.Hash(0), list.Hash(1)) {
		t.Error("different windows should hash differently")
	}

	list.Swap(0, 1)
	if examples[1].Label != 0 {
		t.Error("caller's slice must not be reordered")
	}
	sub := list.Slice(0, 1).(*SampleList)
	if sub.Len() != 1 || !reflect.DeepEqual(sub.Examples[0], examples[1]) {
		t.Errorf("unexpected slice %v", sub.Examples)
	}

	bad := NewSampleList(c, 3, []Example{{Input: []int{3}, Label: 0}})
	if _, err := bad.GetSample(0); err == nil {
		t.Error("expected error for out-of-range index")
	}
}

func TestSampleListSplit(t *testing.T) {
	gen := rand.New(rand.NewSource(1))
	var corpus []int
	for i := 0; i < 500; i++ {
		corpus = append(corpus, gen.Intn(11))
	}
	examples, err := TrainingSequences(corpus, 8)
	if err != nil {
		t.Fatal(err)
	}
	list := NewSampleList(anyvec64.DefaultCreator{}, 11, examples)
	train, validation := anysgd.HashSplit(list, 0.8)
	if train.Len()+validation.Len() != list.Len() {
		t.Fatalf("split lost samples: %d + %d != %d", train.Len(), validation.Len(), list.Len())
	}
	if train.Len() == 0 || validation.Len() == 0 {
		t.Fatalf("degenerate split: %d / %d", train.Len(), validation.Len())
	}

	trainHashes := map[string]bool{}
	for i := 0; i < train.Len(); i++ {
		trainHashes[string(train.(*SampleList).Hash(i))] = true
	}
	for i := 0; i < validation.Len(); i++ {
		if trainHashes[string(validation.(*SampleList).Hash(i))] {
			t.Errorf("validation sample %d duplicates a training window", i)
		}
	}
}
