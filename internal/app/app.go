// Package app wires the pipeline together: a reader goroutine feeding a
// bounded entry channel, inline parse and classify stages, and the
// selected renderer draining the result.
package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/example/woodchipper/internal/classify"
	"github.com/example/woodchipper/internal/config"
	"github.com/example/woodchipper/internal/message"
	"github.com/example/woodchipper/internal/parser"
	"github.com/example/woodchipper/internal/reader"
	"github.com/example/woodchipper/internal/render"
	"github.com/example/woodchipper/internal/ui"
)

// entryBuffer is the reader→main channel capacity; backpressure against a
// slow renderer happens here.
const entryBuffer = 1024

// exitAckTimeout bounds how long we wait for cleanup-required readers to
// acknowledge an exit request.
const exitAckTimeout = 250 * time.Millisecond

// ErrReaderFailed reports that the reader gave up without producing any
// messages.
var ErrReaderFailed = errors.New("reader failed")

// newLogger builds the optional out-of-band debug logger.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.DebugLog == "" {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{cfg.DebugLog}
	zcfg.ErrorOutputPaths = []string{cfg.DebugLog}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	return logger, nil
}

// newReader constructs the configured reader.
func newReader(cfg *config.Config, log *zap.Logger) (reader.Reader, error) {
	switch cfg.Reader {
	case config.ReaderStdin:
		return &reader.StdinReader{}, nil
	case config.ReaderStdinAlt:
		return &reader.StdinAltReader{}, nil
	case config.ReaderFile:
		return &reader.FileReader{Path: cfg.Path, Log: log}, nil
	case config.ReaderKubernetes:
		return &reader.KubernetesReader{
			Namespace:    cfg.Namespace,
			Selectors:    cfg.Selectors,
			PollInterval: cfg.PollInterval,
			Log:          log,
		}, nil
	case config.ReaderNull:
		return &reader.NullReader{}, nil
	}
	return nil, fmt.Errorf("unknown reader %q", cfg.Reader)
}

// Run executes the pipeline until end of stream or user exit.
func Run(cfg *config.Config) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	src, err := newReader(cfg, log)
	if err != nil {
		return err
	}

	entries := make(chan message.LogEntry, entryBuffer)
	exitReq := make(chan struct{})
	exitAck := make(chan struct{})
	src.Start(entries, reader.Exit{Req: exitReq, Ack: exitAck})

	chain := parser.NewChain(cfg.RegexRules)

	var runErr error
	if cfg.Renderer == config.RendererInteractive {
		runErr = runInteractive(cfg, chain, entries)
	} else {
		runErr = runStreaming(cfg, chain, entries)
	}

	// attempt to tell the reader to quit; cleanup-required readers
	// acknowledge, everyone else is reclaimed by process teardown
	close(exitReq)
	select {
	case <-exitAck:
	case <-time.After(exitAckTimeout):
	}

	return runErr
}

// classifyEntry turns a channel entry into a classified message, or nil
// for EOF.
func classifyEntry(chain *parser.Chain, entry message.LogEntry) *classify.ClassifiedMessage {
	switch entry.Kind {
	case message.EntryLine:
		return classify.Classify(chain.Parse(entry.Line, entry.Meta))
	case message.EntryInternal:
		return classify.Internal(entry.Level, entry.Text)
	}
	return nil
}

// runStreaming drains the pipeline through a non-interactive renderer on
// the main goroutine and terminates on EOF.
func runStreaming(cfg *config.Config, chain *parser.Chain, entries <-chan message.LogEntry) error {
	var r render.Renderer
	switch cfg.Renderer {
	case config.RendererJSON:
		r = &render.JSONRenderer{Out: os.Stdout}
	case config.RendererPlain:
		r = &render.PlainRenderer{Out: os.Stdout}
	case config.RendererRaw:
		r = &render.RawRenderer{Out: os.Stdout}
	case config.RendererStyled:
		r = &render.StyledRenderer{
			Out:           os.Stdout,
			Style:         cfg.Style,
			FallbackWidth: cfg.FallbackWidth,
		}
	default:
		return fmt.Errorf("unknown renderer %q", cfg.Renderer)
	}

	sawLine := false
	sawReaderError := false

	for entry := range entries {
		if entry.Kind == message.EntryEOF {
			break
		}
		if entry.Kind == message.EntryLine {
			sawLine = true
		}
		if entry.Kind == message.EntryInternal && entry.Level >= message.LevelError {
			sawReaderError = true
		}
		if cm := classifyEntry(chain, entry); cm != nil {
			if err := r.Render(cm); err != nil {
				return fmt.Errorf("render: %w", err)
			}
		}
	}
	if err := r.Close(); err != nil {
		return err
	}

	if sawReaderError && !sawLine {
		return ErrReaderFailed
	}
	return nil
}

// runInteractive feeds classified messages to the pager over a channel; a
// forwarding goroutine keeps the reader's channel draining so a blocked
// reader never stalls input handling.
func runInteractive(cfg *config.Config, chain *parser.Chain, entries <-chan message.LogEntry) error {
	events := make(chan ui.Event, entryBuffer)

	go func() {
		defer close(events)
		for entry := range entries {
			if entry.Kind == message.EntryEOF {
				events <- ui.Event{EOF: true}
				return
			}
			if cm := classifyEntry(chain, entry); cm != nil {
				events <- ui.Event{Message: cm}
			}
		}
	}()

	if err := ui.Run(ui.Options{Style: cfg.Style, Events: events}); err != nil {
		return fmt.Errorf("interactive renderer: %w", err)
	}
	return nil
}
