package melody

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/unixpickle/essentials"
)

// ReadEvents reads events in the plain text event format.
//
// Each non-empty line holds a pitch (or "r") and a
// duration in quarter notes, separated by whitespace.
// Text after a '#' is ignored.
func ReadEvents(r io.Reader) ([]Event, error) {
	var res []Event
	scanner := bufio.NewScanner(r)
	var lineNum int
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("read events: line %d: expected 2 fields but got %d",
				lineNum, len(fields))
		}
		sym, err := ParseSymbol(fields[0])
		if err != nil {
			return nil, essentials.AddCtx(fmt.Sprintf("read events: line %d", lineNum), err)
		}
		if !sym.IsEvent() {
			return nil, fmt.Errorf("read events: line %d: %w (%v)", lineNum,
				ErrInvalidEvent, sym)
		}
		dur, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || dur <= 0 {
			return nil, fmt.Errorf("read events: line %d: bad duration %q", lineNum, fields[1])
		}
		res = append(res, Event{Pitch: sym, Duration: dur})
	}
	if err := scanner.Err(); err != nil {
		return nil, essentials.AddCtx("read events", err)
	}
	return res, nil
}

// WriteEvents writes events in the plain text event
// format understood by ReadEvents.
func WriteEvents(w io.Writer, events []Event) error {
	bw := bufio.NewWriter(w)
	for _, e := range events {
		dur := strconv.FormatFloat(e.Duration, 'g', -1, 64)
		if _, err := fmt.Fprintf(bw, "%s %s\n", e.Pitch, dur); err != nil {
			return essentials.AddCtx("write events", err)
		}
	}
	return bw.Flush()
}

// ReadEventFile reads an event file from disk.
func ReadEventFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadEvents(f)
}
