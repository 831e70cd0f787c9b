package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch"
	"github.com/pkg/errors"
)

// HumanWriter writes one readable line per event, for a terminal.
type HumanWriter struct {
	mu   sync.Mutex
	w    io.Writer
	name string
}

var _ rdpwatch.Journaler = (*HumanWriter)(nil)

// NewHumanWriter creates a new HumanWriter. The name is only used to tell
// writers apart in errors.
func NewHumanWriter(name string, w io.Writer) *HumanWriter {
	return &HumanWriter{w: w, name: name}
}

// Write writes the event as a single line.
func (h *HumanWriter) Write(ev rdpwatch.Event) error {
	line := FormatEvent(time.Now(), ev)

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := io.WriteString(h.w, line+"\n"); err != nil {
		return errors.Wrapf(err, "failed to write to %s", h.name)
	}

	return nil
}

// FormatEvent formats an event the way HumanWriter writes it.
func FormatEvent(t time.Time, ev rdpwatch.Event) string {
	data, err := json.Marshal(ev)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", ev))
	}

	return fmt.Sprintf("%s %s: %s", t.Format(time.RFC3339), ev.Type(), data)
}
