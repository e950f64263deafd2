package reader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/woodchipper/internal/message"
)

// followPollInterval is how often the file reader checks for appended
// data once it has drained existing content.
const followPollInterval = 500 * time.Millisecond

// FileReader streams an on-disk log file: existing content first, then any
// data appended while the viewer runs. It subscribes to the exit request
// so the follow loop can stop cleanly, and acknowledges on the ack
// channel.
type FileReader struct {
	Path string

	// Log receives debug diagnostics; nil means no logging.
	Log *zap.Logger
}

func (r *FileReader) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *FileReader) Start(out chan<- message.LogEntry, exit Exit) {
	go r.run(out, exit)
}

func (r *FileReader) run(out chan<- message.LogEntry, exit Exit) {
	log := r.logger()
	defer func() {
		if exit.Ack != nil {
			close(exit.Ack)
		}
	}()

	f, err := os.Open(r.Path)
	if err != nil {
		out <- message.InternalEntry(message.LevelError,
			fmt.Sprintf("open %s: %v", r.Path, err))
		out <- message.EOFEntry()
		return
	}
	defer f.Close()

	log.Debug("file reader started", zap.String("path", r.Path))

	buf := bufio.NewReaderSize(f, scanBufferInitial)
	produced := false
	var partial strings.Builder

	for {
		line, err := buf.ReadString('\n')
		if line != "" {
			partial.WriteString(line)
		}
		if err == nil {
			out <- message.LineEntry(strings.TrimRight(partial.String(), "\r\n"), nil)
			partial.Reset()
			produced = true
			continue
		}
		if err != io.EOF {
			finish(out, produced, fmt.Errorf("read %s: %w", r.Path, err))
			return
		}

		// at the end of current content; wait for appends or exit
		select {
		case <-exit.Req:
			if partial.Len() > 0 {
				out <- message.LineEntry(partial.String(), nil)
				produced = true
			}
			log.Debug("file reader exiting", zap.String("path", r.Path))
			finish(out, produced, nil)
			return
		case <-time.After(followPollInterval):
		}
	}
}
