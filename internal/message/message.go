// Package message defines the normalized log data model shared by every
// pipeline stage: entries crossing the reader channel, parsed messages, and
// their ordered metadata.
package message

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Level is a normalized log severity.
type Level int

const (
	LevelUnknown Level = iota
	LevelTrace
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the lowercase name used in rendered output.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ParseLevel maps common level spellings onto a Level. The mapping is
// case-insensitive and accepts single-letter klog style prefixes.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "trc", "t":
		return LevelTrace, true
	case "debug", "dbg", "d":
		return LevelDebug, true
	case "info", "inf", "i":
		return LevelInfo, true
	case "warn", "warning", "w":
		return LevelWarn, true
	case "error", "err", "e":
		return LevelError, true
	case "fatal", "panic", "crit", "critical", "f", "p":
		return LevelFatal, true
	}
	return LevelUnknown, false
}

// Metadata is a key→string map that preserves insertion order. Parsers fill
// it in input order and the metadata classifier and JSON renderer replay that
// order verbatim.
type Metadata struct {
	keys   []string
	values map[string]string
}

// NewMetadata returns an empty ordered metadata map.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]string)}
}

// Set inserts or replaces a key. A replaced key keeps its original position.
func (m *Metadata) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it is present.
func (m *Metadata) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of keys.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order. The slice is shared; callers
// must not mutate it.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// MarshalJSON emits the map as a JSON object in insertion order.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ReaderMetadata carries per-line hints from a reader: an authoritative
// timestamp (e.g. from the Kubernetes log API) and a source label when
// following multiple inputs.
type ReaderMetadata struct {
	Timestamp *time.Time
	Source    string
}

// Message is the normalized output of the parser chain.
type Message struct {
	// Kind is the id of the parser that produced the message, or "internal"
	// for operator notices.
	Kind string

	// Timestamp is the parsed timestamp normalized to UTC, if any.
	Timestamp *time.Time

	// Level is the detected severity.
	Level Level

	// Raw is the unmodified input line.
	Raw string

	// Text is the primary message body.
	Text string

	// Metadata holds remaining structured fields in input order.
	Metadata *Metadata

	// Reader carries hints from the reader that produced the line.
	Reader *ReaderMetadata
}

// BestTimestamp returns the message timestamp, falling back to the reader
// timestamp hint.
func (m *Message) BestTimestamp() *time.Time {
	if m.Timestamp != nil {
		return m.Timestamp
	}
	if m.Reader != nil {
		return m.Reader.Timestamp
	}
	return nil
}

// Internal builds an operator notice message. The interactive renderer has
// no stderr, so internal errors surface in-band as these.
func Internal(level Level, text string) *Message {
	now := time.Now().UTC()
	return &Message{
		Kind:      "internal",
		Timestamp: &now,
		Level:     level,
		Raw:       text,
		Text:      text,
		Metadata:  NewMetadata(),
	}
}

// EntryKind tags the variants of LogEntry.
type EntryKind int

const (
	// EntryLine is an input line plus optional reader hints.
	EntryLine EntryKind = iota

	// EntryEOF signals that no more lines are coming.
	EntryEOF

	// EntryInternal is an operator notice to surface in-band.
	EntryInternal
)

// LogEntry is the tagged union crossing the reader→main channel.
type LogEntry struct {
	Kind EntryKind

	// Line and Meta are set for EntryLine.
	Line string
	Meta *ReaderMetadata

	// Level and Text are set for EntryInternal.
	Level Level
	Text  string
}

// LineEntry wraps a raw input line.
func LineEntry(line string, meta *ReaderMetadata) LogEntry {
	return LogEntry{Kind: EntryLine, Line: line, Meta: meta}
}

// EOFEntry signals end of input.
func EOFEntry() LogEntry {
	return LogEntry{Kind: EntryEOF}
}

// InternalEntry wraps an operator notice.
func InternalEntry(level Level, text string) LogEntry {
	return LogEntry{Kind: EntryInternal, Level: level, Text: text}
}
