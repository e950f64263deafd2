// Package reader implements the pluggable input sources of the pipeline.
// A reader runs on its own goroutine because sources may block
// indefinitely; it streams LogEntry values onto a bounded channel until
// the source is exhausted or an exit is requested, then sends EOF and
// returns.
package reader

import (
	"bufio"
	"fmt"
	"io"

	"github.com/example/woodchipper/internal/message"
)

const (
	scanBufferInitial = 64 * 1024
	scanBufferMax     = 1024 * 1024
)

// Exit carries the cooperative shutdown channels. Readers are not required
// to honor Req promptly; cleanup-required readers subscribe to Req and
// must close Ack before returning.
type Exit struct {
	Req <-chan struct{}
	Ack chan<- struct{}
}

// Reader is the capability set every source implements.
type Reader interface {
	// Start launches the reader goroutine and returns immediately.
	Start(out chan<- message.LogEntry, exit Exit)
}

// scanInto drains r line by line into out. Returns the scan error, if any,
// and whether any line was produced.
func scanInto(r io.Reader, out chan<- message.LogEntry) (bool, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, scanBufferInitial), scanBufferMax)

	produced := false
	for scanner.Scan() {
		out <- message.LineEntry(scanner.Text(), nil)
		produced = true
	}
	return produced, scanner.Err()
}

// finish reports a terminal reader error, warns when the stream produced
// nothing, and sends EOF.
func finish(out chan<- message.LogEntry, produced bool, err error) {
	if err != nil {
		out <- message.InternalEntry(message.LevelError,
			fmt.Sprintf("read error: %v", err))
	} else if !produced {
		out <- message.InternalEntry(message.LevelWarn,
			"reached end of input without reading any messages")
	}
	out <- message.EOFEntry()
}
