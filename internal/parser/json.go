package parser

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/example/woodchipper/internal/message"
)

// Well-known field names in listed precedence order. Matching is
// case-insensitive.
var (
	timestampFields = []string{"time", "timestamp", "ts", "@timestamp"}
	levelFields     = []string{"level", "lvl", "severity"}
	textFields      = []string{"msg", "message", "text"}
)

// jsonField is one decoded top-level field, order preserved.
type jsonField struct {
	key string
	raw json.RawMessage
}

// decodeObject reads a single top-level JSON object from line, preserving
// field order. Returns nil if the line is not exactly one object.
func decodeObject(line string) []jsonField {
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	fields := []jsonField{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil
		}
		fields = append(fields, jsonField{key: key, raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil
	}
	if dec.More() {
		return nil
	}
	return fields
}

// rawToString unpacks a JSON value for display: strings lose their quotes,
// everything else keeps its compact JSON form.
func rawToString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// isKnownKind reports whether raw is a string naming one of our parser
// ids.
func isKnownKind(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	switch s {
	case "json", "plain", "logrus", "klog", "regex", "internal":
		return true
	}
	return false
}

// findField returns the index of the first field whose key matches one of
// the candidate names, honoring candidate precedence.
func findField(fields []jsonField, candidates []string) int {
	for _, want := range candidates {
		for i, f := range fields {
			if strings.EqualFold(f.key, want) {
				return i
			}
		}
	}
	return -1
}

// parseJSON handles single-line JSON documents. The pre-check is only that
// the first non-space byte is '{'; malformed documents fall through to the
// next parser.
func parseJSON(line string, meta *message.ReaderMetadata) *message.Message {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}

	fields := decodeObject(trimmed)
	if fields == nil {
		return nil
	}

	mapped := make(map[int]bool)

	var timestamp *time.Time
	isRFC3339 := false
	if i := findField(fields, timestampFields); i >= 0 {
		var s string
		if err := json.Unmarshal(fields[i].raw, &s); err == nil {
			if t, ok := parseRFC3339(s); ok {
				timestamp, isRFC3339 = &t, true
				mapped[i] = true
			} else if t, ok := parseRFC2822(s); ok {
				timestamp = &t
				mapped[i] = true
			} else if t, ok := extractTimestamp(s); ok {
				timestamp = &t
				mapped[i] = true
			}
		}
	}

	level := message.LevelUnknown
	if i := findField(fields, levelFields); i >= 0 {
		var s string
		if err := json.Unmarshal(fields[i].raw, &s); err == nil {
			if l, ok := message.ParseLevel(s); ok {
				level = l
				mapped[i] = true
			}
		}
	}

	text := ""
	if i := findField(fields, textFields); i >= 0 {
		var s string
		if err := json.Unmarshal(fields[i].raw, &s); err == nil {
			text = strings.TrimSpace(s)
			mapped[i] = true
		}
	}

	metadata := message.NewMetadata()
	for i, f := range fields {
		if mapped[i] {
			continue
		}
		// recognize our own json renderer output so feeding it back
		// through is idempotent: a kind tag is dropped, a nested metadata
		// object is flattened in order
		if strings.EqualFold(f.key, "kind") && isKnownKind(f.raw) {
			continue
		}
		if strings.EqualFold(f.key, "metadata") {
			if inner := decodeObject(string(f.raw)); inner != nil {
				for _, g := range inner {
					metadata.Set(g.key, rawToString(g.raw))
				}
				continue
			}
		}
		metadata.Set(f.key, rawToString(f.raw))
	}

	return &message.Message{
		Kind:      "json",
		Timestamp: resolveTimestamp(timestamp, isRFC3339, meta),
		Level:     level,
		Raw:       line,
		Text:      text,
		Metadata:  metadata,
		Reader:    meta,
	}
}
