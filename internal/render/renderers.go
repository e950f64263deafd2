package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/example/woodchipper/internal/classify"
	"github.com/example/woodchipper/internal/message"
	"github.com/example/woodchipper/internal/style"
)

// Renderer drains the chunked-message stream. Non-interactive renderers
// write to stdout and return from Close when the stream ends.
type Renderer interface {
	Render(cm *classify.ClassifiedMessage) error
	Close() error
}

// jsonMessage is the stable wire shape of the json renderer: one object
// per message, normalized fields only.
type jsonMessage struct {
	Kind      string            `json:"kind"`
	Timestamp string            `json:"timestamp,omitempty"`
	Level     string            `json:"level,omitempty"`
	Text      string            `json:"text,omitempty"`
	Metadata  *message.Metadata `json:"metadata,omitempty"`
}

// MarshalMessage encodes the normalized fields of a message as JSON.
// Timestamps are RFC-3339 UTC; unknown levels and empty fields are
// omitted.
func MarshalMessage(m *message.Message) ([]byte, error) {
	out := jsonMessage{Kind: m.Kind, Text: m.Text}
	if ts := m.BestTimestamp(); ts != nil {
		out.Timestamp = ts.UTC().Format(time.RFC3339)
	}
	if m.Level != message.LevelUnknown {
		out.Level = m.Level.String()
	}
	if m.Metadata.Len() > 0 {
		out.Metadata = m.Metadata
	}
	return json.Marshal(out)
}

// JSONRenderer prints one JSON object per message. Classifier output is
// discarded.
type JSONRenderer struct {
	Out io.Writer
}

func (r *JSONRenderer) Render(cm *classify.ClassifiedMessage) error {
	data, err := MarshalMessage(cm.Message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	_, err = fmt.Fprintf(r.Out, "%s\n", data)
	return err
}

func (r *JSONRenderer) Close() error { return nil }

// PlainRenderer prints the plain rendering of each message, no ANSI.
type PlainRenderer struct {
	Out io.Writer
}

func (r *PlainRenderer) Render(cm *classify.ClassifiedMessage) error {
	for _, line := range PlainLines(cm) {
		if _, err := fmt.Fprintln(r.Out, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlainRenderer) Close() error { return nil }

// RawRenderer prints raw input lines unmodified.
type RawRenderer struct {
	Out io.Writer
}

func (r *RawRenderer) Render(cm *classify.ClassifiedMessage) error {
	_, err := fmt.Fprintln(r.Out, cm.Message.Raw)
	return err
}

func (r *RawRenderer) Close() error { return nil }

// StyledRenderer prints the interactive layout one-shot per message, with
// ANSI attributes and terminal-width wrapping when a width is detectable.
type StyledRenderer struct {
	Out           io.Writer
	Style         *style.Style
	FallbackWidth int

	// WidthFn overrides terminal width detection; tests use it.
	WidthFn func() int
}

func (r *StyledRenderer) width() int {
	if r.WidthFn != nil {
		if w := r.WidthFn(); w > 0 {
			return w
		}
		return r.FallbackWidth
	}
	if f, ok := r.Out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return r.FallbackWidth
}

func (r *StyledRenderer) Render(cm *classify.ClassifiedMessage) error {
	for _, line := range StyledLines(cm, &r.Style.Normal, r.width(), false) {
		if _, err := fmt.Fprintln(r.Out, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *StyledRenderer) Close() error { return nil }
