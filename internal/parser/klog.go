package parser

import (
	"regexp"
	"time"

	"github.com/example/woodchipper/internal/message"
)

// klog header format, per the description in k8s.io/klog:
//
//	Lmmdd hh:mm:ss.uuuuuu threadid file:line] msg...
var klogRe = regexp.MustCompile(
	`^([IWEF])(\d{4} \d{2}:\d{2}:\d{2}\.\d{6})\s+(\d+) ([\S.]+:\d+)\] (.+)$`)

// parseKlog handles klog-style messages. klog omits the year; it is
// supplied from current UTC.
func parseKlog(line string, meta *message.ReaderMetadata) *message.Message {
	caps := klogRe.FindStringSubmatch(line)
	if caps == nil {
		return nil
	}

	level, _ := message.ParseLevel(caps[1])

	var timestamp *time.Time
	if t, err := time.Parse("0102 15:04:05.000000", caps[2]); err == nil {
		now := time.Now().UTC()
		full := time.Date(now.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
		timestamp = &full
	}

	metadata := message.NewMetadata()
	metadata.Set("file", caps[4])

	return &message.Message{
		Kind:      "klog",
		Timestamp: resolveTimestamp(timestamp, false, meta),
		Level:     level,
		Raw:       line,
		Text:      caps[5],
		Metadata:  metadata,
		Reader:    meta,
	}
}
