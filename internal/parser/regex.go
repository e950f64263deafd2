package parser

import (
	"time"

	"github.com/example/woodchipper/internal/message"
)

// parseRuleDatetime parses a captured datetime per the rule's format:
// the rfc2822/rfc3339 shorthands, or a strftime layout with an optional
// prepend applied to current UTC for fields the log format omits.
func parseRuleDatetime(rule *RegexRule, datetime string) (*time.Time, bool) {
	switch rule.Datetime {
	case "":
		return nil, false
	case "rfc3339":
		if t, ok := parseRFC3339(datetime); ok {
			return &t, true
		}
		return nil, false
	case "rfc2822":
		if t, ok := parseRFC2822(datetime); ok {
			return &t, false
		}
		return nil, false
	}

	format := rule.Datetime
	if rule.DatetimePrepend != "" {
		prependLayout, err := strftimeToLayout(rule.DatetimePrepend)
		if err != nil {
			return nil, false
		}
		datetime = time.Now().UTC().Format(prependLayout) + " " + datetime
	}

	layout, err := strftimeToLayout(format)
	if err != nil {
		return nil, false
	}
	t, err := time.Parse(layout, datetime)
	if err != nil {
		return nil, false
	}
	utc := t.UTC()
	return &utc, false
}

// parseRule applies one user regex rule to a line.
func parseRule(rule *RegexRule, line string, meta *message.ReaderMetadata) *message.Message {
	caps := rule.Pattern.FindStringSubmatch(line)
	if caps == nil {
		return nil
	}

	var timestamp *time.Time
	isRFC3339 := false
	level := message.LevelUnknown
	text := ""
	metadata := message.NewMetadata()

	for i, name := range rule.Pattern.SubexpNames() {
		if i == 0 || name == "" || i >= len(caps) {
			continue
		}
		value := caps[i]
		switch name {
		case "datetime":
			timestamp, isRFC3339 = parseRuleDatetime(rule, value)
		case "level":
			if l, ok := message.ParseLevel(value); ok {
				level = l
			}
		case "text":
			text = value
		default:
			metadata.Set(name, value)
		}
	}

	return &message.Message{
		Kind:      "regex",
		Timestamp: resolveTimestamp(timestamp, isRFC3339, meta),
		Level:     level,
		Raw:       line,
		Text:      text,
		Metadata:  metadata,
		Reader:    meta,
	}
}

// parseRegex tries each user-provided rule in config order.
func (c *Chain) parseRegex(line string, meta *message.ReaderMetadata) *message.Message {
	for i := range c.rules {
		if msg := parseRule(&c.rules[i], line, meta); msg != nil {
			return msg
		}
	}
	return nil
}
