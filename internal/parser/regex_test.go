package parser

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/example/woodchipper/internal/message"
)

func ruleChain(t *testing.T, pattern, datetime, prepend string) *Chain {
	t.Helper()
	return NewChain([]RegexRule{{
		Pattern:         regexp.MustCompile(pattern),
		Datetime:        datetime,
		DatetimePrepend: prepend,
	}})
}

func TestParseRegexPythonLogging(t *testing.T) {
	chain := ruleChain(t,
		`^(?P<datetime>\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})(?:,\d+) - (?P<level>\w+)\s* - (?P<file>\S+)\s* -(?P<text>.+)$`,
		"%Y-%m-%d %H:%M:%S", "")

	msg := chain.Parse("2019-07-03 12:02:13,977 - DEBUG    - test.py:9 - hi", nil)
	if msg.Kind != "regex" {
		t.Fatalf("kind = %q, want regex", msg.Kind)
	}
	if msg.Level != message.LevelDebug {
		t.Fatalf("level = %v, want debug", msg.Level)
	}
	if msg.Text != " hi" {
		t.Fatalf("text = %q, want %q (leading space preserved)", msg.Text, " hi")
	}
	if v, _ := msg.Metadata.Get("file"); v != "test.py:9" {
		t.Fatalf("file = %q, want test.py:9", v)
	}
	want := mustTime(t, "2019-07-03T12:02:13Z")
	if msg.Timestamp == nil || !msg.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", msg.Timestamp, want)
	}
}

func TestParseRegexRFC3339(t *testing.T) {
	chain := ruleChain(t, `^(?P<datetime>.+)$`, "rfc3339", "")
	msg := chain.Parse("2019-10-01T20:40:49Z", nil)
	if msg.Kind != "regex" {
		t.Fatalf("kind = %q, want regex", msg.Kind)
	}
	want := mustTime(t, "2019-10-01T20:40:49Z")
	if msg.Timestamp == nil || !msg.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", msg.Timestamp, want)
	}
}

func TestParseRegexRFC2822(t *testing.T) {
	chain := ruleChain(t, `^(?P<datetime>.+)$`, "rfc2822", "")
	msg := chain.Parse("Tue, 1 Jul 2003 10:52:37 +0200", nil)
	want := mustTime(t, "2003-07-01T08:52:37Z")
	if msg.Timestamp == nil || !msg.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v (normalized to UTC)", msg.Timestamp, want)
	}
}

func TestParseRegexInvalidDate(t *testing.T) {
	chain := ruleChain(t, `^(?P<datetime>.+)$`, "rfc2822", "")
	msg := chain.Parse("2019-10-01T20:40:49Z", nil)
	// rfc2822 cannot parse an iso date; the message still parses via the rule
	if msg.Kind != "regex" {
		t.Fatalf("kind = %q, want regex", msg.Kind)
	}
	if msg.Timestamp != nil {
		t.Fatalf("timestamp = %v, want nil", msg.Timestamp)
	}
}

func TestParseRegexDatetimePrepend(t *testing.T) {
	// klog-shaped rule: the year is missing and prepended from current UTC.
	// The rule is applied directly since the built-in klog parser sits
	// ahead of the regex stage in the chain.
	rule := RegexRule{
		Pattern: regexp.MustCompile(
			`^(?P<level>[A-Z])(?P<datetime>\d{4} \d{2}:\d{2}:\d{2})\.\d+\s+(?P<threadId>\d+) (?P<file>[\S.]+:\d+)\] (?P<text>.+)$`),
		Datetime:        "%Y %m%d %H:%M:%S",
		DatetimePrepend: "%Y",
	}

	msg := parseRule(&rule, "I0703 17:19:11.688460       1 controller.go:293] hello world", nil)
	if msg == nil {
		t.Fatal("parseRule returned nil for a matching line")
	}
	if msg.Kind != "regex" {
		t.Fatalf("kind = %q, want regex", msg.Kind)
	}
	want := fmt.Sprintf("%d-07-03T17:19:11Z", time.Now().UTC().Year())
	if msg.Timestamp == nil || msg.Timestamp.UTC().Format(time.RFC3339) != want {
		t.Fatalf("timestamp = %v, want %s", msg.Timestamp, want)
	}
	if msg.Text != "hello world" {
		t.Fatalf("text = %q", msg.Text)
	}
	if v, _ := msg.Metadata.Get("threadId"); v != "1" {
		t.Fatalf("threadId = %q, want 1", v)
	}
	if v, _ := msg.Metadata.Get("file"); v != "controller.go:293" {
		t.Fatalf("file = %q, want controller.go:293", v)
	}
}

func TestParseRegexMetadataOnly(t *testing.T) {
	chain := ruleChain(t, `^(?P<a>\S+) (?P<b>\S+)$`, "", "")
	msg := chain.Parse("foo bar", nil)
	if msg.Kind != "regex" {
		t.Fatalf("kind = %q, want regex", msg.Kind)
	}
	if v, _ := msg.Metadata.Get("a"); v != "foo" {
		t.Fatalf("a = %q, want foo", v)
	}
	if v, _ := msg.Metadata.Get("b"); v != "bar" {
		t.Fatalf("b = %q, want bar", v)
	}
}

func TestParseRegexNoMatchFallsThrough(t *testing.T) {
	chain := ruleChain(t, `^SPECIAL (?P<text>.+)$`, "", "")
	msg := chain.Parse("not special at all", nil)
	if msg.Kind != "plain" {
		t.Fatalf("kind = %q, want plain", msg.Kind)
	}
}
