// Package parser converts raw log lines into normalized Messages. Parsers
// form an ordered chain tried in sequence; the first whose cheap pre-check
// accepts the line wins. The terminal plain parser accepts everything, so
// parsing cannot fail.
package parser

import (
	"regexp"
	"time"

	"github.com/example/woodchipper/internal/message"
)

// RegexRule is one compiled entry from a user regex config file.
type RegexRule struct {
	// Pattern matches a full line; named capture groups `datetime`, `level`
	// and `text` map onto Message fields, all other named groups become
	// metadata in capture order.
	Pattern *regexp.Regexp

	// Datetime is `rfc2822`, `rfc3339`, or a strftime format string for the
	// `datetime` group.
	Datetime string

	// DatetimePrepend is a strftime format applied to the current UTC time
	// and prefixed to the captured datetime with a single space, supplying
	// fields the log format leaves out (e.g. the year in klog). Datetime then
	// describes the combined string, prepended fields included.
	DatetimePrepend string
}

// Chain is the ordered parser list: json → logrus → klog → regex → plain.
type Chain struct {
	rules []RegexRule
}

// NewChain builds a chain with the given user regex rules (may be nil).
func NewChain(rules []RegexRule) *Chain {
	return &Chain{rules: rules}
}

// Parse converts a raw line into a Message. Failures inside a specialized
// parser fall through to the next one; the plain parser is total.
func (c *Chain) Parse(line string, meta *message.ReaderMetadata) *message.Message {
	if msg := parseJSON(line, meta); msg != nil {
		return msg
	}
	if msg := parseLogrus(line, meta); msg != nil {
		return msg
	}
	if msg := parseKlog(line, meta); msg != nil {
		return msg
	}
	if msg := c.parseRegex(line, meta); msg != nil {
		return msg
	}
	return parsePlain(line, meta)
}

// resolveTimestamp applies the tie-break rule between a parser-extracted
// timestamp and the reader's hint: the reader timestamp wins unless the
// parser extracted an RFC-3339 timestamp from the body.
func resolveTimestamp(extracted *time.Time, isRFC3339 bool, meta *message.ReaderMetadata) *time.Time {
	if extracted != nil && isRFC3339 {
		return extracted
	}
	if meta != nil && meta.Timestamp != nil {
		return meta.Timestamp
	}
	return extracted
}
