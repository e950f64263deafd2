//go:build unix

package reader

import (
	"fmt"
	"os"

	"github.com/example/woodchipper/internal/message"
)

// stdinDevice is the controlling terminal's view of our stdin pipe. The
// interactive renderer opens /dev/tty for input, which invalidates the
// process stdin handle on some platforms; reading the device directly
// keeps the pipe alive alongside it.
const stdinDevice = "/dev/stdin"

// StdinAltAvailable reports whether the stdin device exists on this
// platform.
func StdinAltAvailable() bool {
	_, err := os.Stat(stdinDevice)
	return err == nil
}

// StdinAltReader reads the stdin device directly so the interactive
// renderer's tty handle and the input pipe do not collide. Unix only.
type StdinAltReader struct{}

func (r *StdinAltReader) Start(out chan<- message.LogEntry, _ Exit) {
	go func() {
		f, err := os.Open(stdinDevice)
		if err != nil {
			out <- message.InternalEntry(message.LevelError,
				fmt.Sprintf("open %s: %v", stdinDevice, err))
			out <- message.EOFEntry()
			return
		}
		defer f.Close()

		produced, err := scanInto(f, out)
		finish(out, produced, err)
	}()
}
