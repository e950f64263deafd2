package reader

import "github.com/example/woodchipper/internal/message"

// NullReader surfaces a selection error when autodetection finds no usable
// source: one internal error, then EOF.
type NullReader struct{}

func (r *NullReader) Start(out chan<- message.LogEntry, _ Exit) {
	go func() {
		out <- message.InternalEntry(message.LevelError,
			"no reader was detected automatically; select a reader (e.g. --reader kubernetes) or pipe in some input; see woodchipper --help for details")
		out <- message.EOFEntry()
	}()
}
