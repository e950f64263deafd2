package parser

import (
	"regexp"

	"github.com/example/woodchipper/internal/message"
)

// Level scan order matters: a line mentioning both "error" and "info"
// should read as an error.
var levelScan = []struct {
	re    *regexp.Regexp
	level message.Level
}{
	{regexp.MustCompile(`(?i)\bfatal\b`), message.LevelFatal},
	{regexp.MustCompile(`(?i)\berr(?:or)?\b`), message.LevelError},
	{regexp.MustCompile(`(?i)\bwarn(?:ing)?\b`), message.LevelWarn},
	{regexp.MustCompile(`(?i)\binfo\b`), message.LevelInfo},
	{regexp.MustCompile(`(?i)\b(?:debug|dbg)\b`), message.LevelDebug},
	{regexp.MustCompile(`(?i)\btrace\b`), message.LevelTrace},
}

func scanLevel(line string) message.Level {
	for _, s := range levelScan {
		if s.re.MatchString(line) {
			return s.level
		}
	}
	return message.LevelUnknown
}

// parsePlain is the terminal parser: it accepts every line. The reader
// timestamp hint is preferred; otherwise a timestamp is opportunistically
// extracted from the body, guarded against known-spurious matches.
func parsePlain(line string, meta *message.ReaderMetadata) *message.Message {
	msg := &message.Message{
		Kind:     "plain",
		Level:    scanLevel(line),
		Raw:      line,
		Text:     line,
		Metadata: message.NewMetadata(),
		Reader:   meta,
	}

	if meta != nil && meta.Timestamp != nil {
		msg.Timestamp = meta.Timestamp
	} else if t, ok := extractTimestamp(line); ok {
		msg.Timestamp = &t
	}

	return msg
}
