// Package vocab maps encoded melody symbols to the
// integer indices consumed by sequence models.
package vocab

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ankurju/melody"
)

var (
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrUnknownIndex  = errors.New("unknown index")
)

// UnknownSymbolError is returned when a symbol is missing
// from a Vocabulary.
type UnknownSymbolError struct {
	Symbol string
}

func (u *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown symbol: %q", u.Symbol)
}

// Is allows errors.Is to match ErrUnknownSymbol.
func (u *UnknownSymbolError) Is(target error) bool {
	return target == ErrUnknownSymbol
}

// UnknownIndexError is returned when an index is outside
// of a Vocabulary.
type UnknownIndexError struct {
	Index int
	Size  int
}

func (u *UnknownIndexError) Error() string {
	return fmt.Sprintf("index %d out of range for vocabulary of size %d", u.Index, u.Size)
}

// Is allows errors.Is to match ErrUnknownIndex.
func (u *UnknownIndexError) Is(target error) bool {
	return target == ErrUnknownIndex
}

// A Vocabulary is a bijection between symbols and the
// indices 0 through Len()-1.
//
// Indices are assigned in sorted order of the symbols'
// textual forms, so building a Vocabulary from the same
// corpus always yields the same mapping.
//
// A Vocabulary is immutable and may be shared between
// Goroutines.
type Vocabulary struct {
	symbols []string
	indices map[string]int
}

// Build creates a Vocabulary from the distinct symbols in
// a whitespace-separated corpus.
//
// Tokens are stored in their canonical form, so "060" and
// "60" are the same symbol.
func Build(corpus string) (*Vocabulary, error) {
	symbols, err := melody.ParseSymbols(corpus)
	if err != nil {
		return nil, fmt.Errorf("build vocabulary: %w", err)
	}
	return FromSymbols(symbols), nil
}

// FromSymbols creates a Vocabulary from the distinct
// symbols in a sequence.
func FromSymbols(symbols []melody.Symbol) *Vocabulary {
	tokens := make([]string, len(symbols))
	for i, s := range symbols {
		tokens[i] = s.String()
	}
	return fromTokens(tokens)
}

func fromTokens(tokens []string) *Vocabulary {
	set := map[string]bool{}
	for _, t := range tokens {
		set[t] = true
	}
	symbols := make([]string, 0, len(set))
	for t := range set {
		symbols = append(symbols, t)
	}
	sort.Strings(symbols)
	return newVocabulary(symbols)
}

func newVocabulary(symbols []string) *Vocabulary {
	res := &Vocabulary{
		symbols: symbols,
		indices: make(map[string]int, len(symbols)),
	}
	for i, s := range symbols {
		res.indices[s] = i
	}
	return res
}

// FromMapping creates a Vocabulary from an explicit
// symbol-to-index mapping.
//
// The indices must be exactly 0 through len(m)-1, and
// every key must parse as a symbol. Keys are stored in
// their canonical form.
func FromMapping(m map[string]int) (*Vocabulary, error) {
	symbols := make([]string, len(m))
	seen := make(map[string]string, len(m))
	for token, idx := range m {
		if idx < 0 || idx >= len(m) {
			return nil, fmt.Errorf("vocabulary mapping: index %d for %q out of range", idx, token)
		}
		if symbols[idx] != "" {
			return nil, fmt.Errorf("vocabulary mapping: index %d used twice", idx)
		}
		sym, err := melody.ParseSymbol(token)
		if err != nil {
			return nil, fmt.Errorf("vocabulary mapping: %w", err)
		}
		canonical := sym.String()
		if other, ok := seen[canonical]; ok {
			return nil, fmt.Errorf("vocabulary mapping: %q and %q are the same symbol",
				other, token)
		}
		seen[canonical] = token
		symbols[idx] = canonical
	}
	return newVocabulary(symbols), nil
}

// Len returns the number of symbols.
func (v *Vocabulary) Len() int {
	return len(v.symbols)
}

// Symbols returns the textual symbols ordered by index.
func (v *Vocabulary) Symbols() []string {
	return append([]string{}, v.symbols...)
}

// Mapping returns a copy of the symbol-to-index map.
func (v *Vocabulary) Mapping() map[string]int {
	res := make(map[string]int, len(v.indices))
	for k, idx := range v.indices {
		res[k] = idx
	}
	return res
}

// Index looks up the index of a symbol.
func (v *Vocabulary) Index(s melody.Symbol) (int, error) {
	return v.lookup(s.String())
}

// TokenIndex looks up the index of a textual symbol.
// Tokens are canonicalised first, so "+60" finds "60".
func (v *Vocabulary) TokenIndex(token string) (int, error) {
	if sym, err := melody.ParseSymbol(token); err == nil {
		token = sym.String()
	}
	return v.lookup(token)
}

func (v *Vocabulary) lookup(token string) (int, error) {
	idx, ok := v.indices[token]
	if !ok {
		return 0, &UnknownSymbolError{Symbol: token}
	}
	return idx, nil
}

// ToIndices maps every symbol to its index.
// It fails on the first symbol that is not in the
// vocabulary.
func (v *Vocabulary) ToIndices(symbols []melody.Symbol) ([]int, error) {
	res := make([]int, len(symbols))
	for i, s := range symbols {
		idx, err := v.Index(s)
		if err != nil {
			return nil, fmt.Errorf("symbol %d: %w", i, err)
		}
		res[i] = idx
	}
	return res, nil
}

// ToSymbol maps an index back to its symbol.
func (v *Vocabulary) ToSymbol(index int) (melody.Symbol, error) {
	if index < 0 || index >= len(v.symbols) {
		return 0, &UnknownIndexError{Index: index, Size: len(v.symbols)}
	}
	return melody.ParseSymbol(v.symbols[index])
}

// Equal checks if two vocabularies hold the same mapping.
func (v *Vocabulary) Equal(v1 *Vocabulary) bool {
	if v.Len() != v1.Len() {
		return false
	}
	for i, s := range v.symbols {
		if v1.symbols[i] != s {
			return false
		}
	}
	return true
}
