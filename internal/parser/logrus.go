package parser

import (
	"strings"
	"time"

	"github.com/example/woodchipper/internal/message"
)

// kv is one logrus key=value pair, order preserved.
type kv struct {
	key   string
	value string
}

func isLogrusKeyChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-' || c == '.' || c == '@' || c == '/' || c == '#':
		return true
	}
	return false
}

// logrusPairs tokenizes a logrus plaintext line of the form
//
//	time="2015-03-26T01:27:38-04:00" level=debug msg="hello world" foo=bar
//
// into ordered pairs. Returns nil if the line is not entirely key=value
// pairs.
func logrusPairs(line string) []kv {
	var pairs []kv
	i := 0
	for i < len(line) {
		// skip separating spaces
		for i < len(line) && line[i] == ' ' {
			i++
		}
		if i >= len(line) {
			break
		}

		keyStart := i
		for i < len(line) && isLogrusKeyChar(line[i]) {
			i++
		}
		if i == keyStart || i >= len(line) || line[i] != '=' {
			return nil
		}
		key := line[keyStart:i]
		i++ // consume '='

		if i < len(line) && line[i] == '"' {
			i++
			var b strings.Builder
			closed := false
			for i < len(line) {
				c := line[i]
				if c == '\\' && i+1 < len(line) {
					next := line[i+1]
					if next == '"' || next == '\\' {
						b.WriteByte(next)
						i += 2
						continue
					}
				}
				if c == '"' {
					closed = true
					i++
					break
				}
				b.WriteByte(c)
				i++
			}
			if !closed {
				return nil
			}
			pairs = append(pairs, kv{key: key, value: b.String()})
		} else {
			valStart := i
			for i < len(line) && line[i] != ' ' {
				i++
			}
			if i == valStart {
				return nil
			}
			pairs = append(pairs, kv{key: key, value: line[valStart:i]})
		}
	}

	if len(pairs) == 0 {
		return nil
	}
	return pairs
}

// findPair returns the index of the first pair whose key matches one of
// the candidate names, honoring candidate precedence.
func findPair(pairs []kv, candidates []string) int {
	for _, want := range candidates {
		for i, p := range pairs {
			if strings.EqualFold(p.key, want) {
				return i
			}
		}
	}
	return -1
}

// parseLogrus handles logrus-style key=value plaintext. The pre-check is
// that the line starts with a key=value pair; anything that does not
// tokenize cleanly falls through.
func parseLogrus(line string, meta *message.ReaderMetadata) *message.Message {
	if !strings.Contains(line, "=") {
		return nil
	}
	pairs := logrusPairs(line)
	if pairs == nil {
		return nil
	}

	mapped := make(map[int]bool)

	var timestamp *time.Time
	isRFC3339 := false
	if i := findPair(pairs, timestampFields); i >= 0 {
		if t, ok := parseRFC3339(pairs[i].value); ok {
			timestamp, isRFC3339 = &t, true
			mapped[i] = true
		} else if t, ok := parseRFC2822(pairs[i].value); ok {
			timestamp = &t
			mapped[i] = true
		} else if t, ok := extractTimestamp(pairs[i].value); ok {
			timestamp = &t
			mapped[i] = true
		}
	}

	level := message.LevelUnknown
	if i := findPair(pairs, levelFields); i >= 0 {
		if l, ok := message.ParseLevel(pairs[i].value); ok {
			level = l
			mapped[i] = true
		}
	}

	text := ""
	if i := findPair(pairs, textFields); i >= 0 {
		text = strings.TrimSpace(pairs[i].value)
		mapped[i] = true
	}

	metadata := message.NewMetadata()
	for i, p := range pairs {
		if mapped[i] {
			continue
		}
		metadata.Set(p.key, p.value)
	}

	return &message.Message{
		Kind:      "logrus",
		Timestamp: resolveTimestamp(timestamp, isRFC3339, meta),
		Level:     level,
		Raw:       line,
		Text:      text,
		Metadata:  metadata,
		Reader:    meta,
	}
}
