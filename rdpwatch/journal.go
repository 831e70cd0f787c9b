package rdpwatch

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
)

// Journaler describes an event logger.
type Journaler interface {
	Write(Event) error
}

// JournalReader describes a journal that can be read back, newest entry
// first.
type JournalReader interface {
	// Read reads the next older entry. io.EOF is returned once the start of
	// the journal has been reached.
	Read() (Event, time.Time, error)
}

// JournalReadWriter is a Journaler that can also be read back.
type JournalReadWriter interface {
	Journaler
	JournalReader
}

type nopJournaler struct{}

// NopJournaler is a Journaler that drops every event.
var NopJournaler Journaler = nopJournaler{}

func (nopJournaler) Write(Event) error { return nil }

// ReadLast reads at most n entries from r, newest first. A short read is not
// an error if the start of the journal was reached.
func ReadLast(r JournalReader, n int) ([]JournalEntry, error) {
	entries := make([]JournalEntry, 0, n)

	for len(entries) < n {
		ev, t, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return entries, err
		}

		entries = append(entries, JournalEntry{Time: t, Event: ev})
	}

	return entries, nil
}

// JournalEntry is a single event read back from a journal.
type JournalEntry struct {
	Time  time.Time
	Event Event
}

func warn(j Journaler, component string, err error) {
	j.Write(&EventWarning{
		Component: component,
		Error:     err.Error(),
	})
}

func warnf(j Journaler, component, f string, v ...interface{}) {
	j.Write(&EventWarning{
		Component: component,
		Error:     fmt.Sprintf(f, v...),
	})
}
