package melody

import (
	"io"
	"os"
	"strings"

	"github.com/unixpickle/essentials"
)

// ParseSymbols parses a whitespace-separated list of
// symbol tokens, such as the contents of an encoded song
// file or a seed string.
func ParseSymbols(s string) ([]Symbol, error) {
	fields := strings.Fields(s)
	res := make([]Symbol, len(fields))
	for i, f := range fields {
		sym, err := ParseSymbol(f)
		if err != nil {
			return nil, err
		}
		res[i] = sym
	}
	return res, nil
}

// FormatSymbols joins symbols into the space-separated
// encoded song format.
func FormatSymbols(symbols []Symbol) string {
	parts := make([]string, len(symbols))
	for i, s := range symbols {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// ReadSymbols reads an encoded song from r.
func ReadSymbols(r io.Reader) ([]Symbol, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, essentials.AddCtx("read symbols", err)
	}
	res, err := ParseSymbols(string(data))
	if err != nil {
		return nil, essentials.AddCtx("read symbols", err)
	}
	return res, nil
}

// WriteSymbols writes an encoded song to w.
func WriteSymbols(w io.Writer, symbols []Symbol) error {
	if _, err := io.WriteString(w, FormatSymbols(symbols)); err != nil {
		return essentials.AddCtx("write symbols", err)
	}
	return nil
}

// ReadSymbolFile reads an encoded song file.
func ReadSymbolFile(path string) ([]Symbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSymbols(f)
}

// WriteSymbolFile writes an encoded song file.
func WriteSymbolFile(path string, symbols []Symbol) error {
	return os.WriteFile(path, []byte(FormatSymbols(symbols)), 0644)
}
