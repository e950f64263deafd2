//go:build !unix

package reader

import "github.com/example/woodchipper/internal/message"

// StdinAltAvailable reports whether the stdin device exists on this
// platform. There is no such device off Unix; callers fall back to the
// plain stdin reader (and the plain renderer when interactivity would
// have required the device).
func StdinAltAvailable() bool {
	return false
}

// StdinAltReader is unsupported on this platform and reports an error
// in-band.
type StdinAltReader struct{}

func (r *StdinAltReader) Start(out chan<- message.LogEntry, _ Exit) {
	go func() {
		out <- message.InternalEntry(message.LevelError,
			"the stdin-alt reader requires a /dev/stdin device; use --reader stdin")
		out <- message.EOFEntry()
	}()
}
