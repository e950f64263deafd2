package reader

import (
	"io"
	"os"

	"github.com/example/woodchipper/internal/message"
)

// StdinReader streams lines from standard input. A blocked read cannot be
// cancelled; the process exits with the goroutine still reading and the
// runtime reclaims the descriptor on teardown.
type StdinReader struct {
	// In overrides the input stream; tests use it. Defaults to os.Stdin.
	In io.Reader
}

func (r *StdinReader) Start(out chan<- message.LogEntry, _ Exit) {
	in := r.In
	if in == nil {
		in = os.Stdin
	}
	go func() {
		produced, err := scanInto(in, out)
		finish(out, produced, err)
	}()
}
