package parser

import (
	"testing"
	"time"

	"github.com/example/woodchipper/internal/message"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts.UTC()
}

func TestChainTotality(t *testing.T) {
	chain := NewChain(nil)
	inputs := []string{
		"plain text",
		"{",
		"{not json",
		`{"level":"info"}`,
		"=",
		"foo=",
		"x",
		"   ",
		"I0102 broken klog",
	}
	for _, in := range inputs {
		if msg := chain.Parse(in, nil); msg == nil {
			t.Fatalf("Parse(%q) = nil; the chain must be total", in)
		}
	}
}

func TestChainOrder(t *testing.T) {
	chain := NewChain(nil)

	if got := chain.Parse(`{"msg":"hi"}`, nil).Kind; got != "json" {
		t.Fatalf("kind = %q, want json", got)
	}
	if got := chain.Parse(`level=info msg=hi`, nil).Kind; got != "logrus" {
		t.Fatalf("kind = %q, want logrus", got)
	}
	if got := chain.Parse("I0102 03:04:05.000000    1 main.go:10] hello", nil).Kind; got != "klog" {
		t.Fatalf("kind = %q, want klog", got)
	}
	if got := chain.Parse("hello world", nil).Kind; got != "plain" {
		t.Fatalf("kind = %q, want plain", got)
	}
}

func TestParseJSONWellKnownFields(t *testing.T) {
	chain := NewChain(nil)
	msg := chain.Parse(`{"time":"2020-01-02T03:04:05Z","level":"info","msg":"hello","user":"a"}`, nil)

	if msg.Kind != "json" {
		t.Fatalf("kind = %q, want json", msg.Kind)
	}
	if msg.Timestamp == nil || !msg.Timestamp.Equal(mustTime(t, "2020-01-02T03:04:05Z")) {
		t.Fatalf("timestamp = %v, want 2020-01-02T03:04:05Z", msg.Timestamp)
	}
	if msg.Level != message.LevelInfo {
		t.Fatalf("level = %v, want info", msg.Level)
	}
	if msg.Text != "hello" {
		t.Fatalf("text = %q, want hello", msg.Text)
	}
	if got := msg.Metadata.Keys(); len(got) != 1 || got[0] != "user" {
		t.Fatalf("metadata keys = %v, want [user]", got)
	}
	if v, _ := msg.Metadata.Get("user"); v != "a" {
		t.Fatalf("metadata user = %q, want a", v)
	}
}

func TestParseJSONCaseInsensitiveMapping(t *testing.T) {
	chain := NewChain(nil)
	msg := chain.Parse(`{"Timestamp":"2020-01-02T03:04:05Z","LEVEL":"warn","Message":"hi"}`, nil)
	if msg.Timestamp == nil {
		t.Fatal("timestamp should map case-insensitively")
	}
	if msg.Level != message.LevelWarn {
		t.Fatalf("level = %v, want warn", msg.Level)
	}
	if msg.Text != "hi" {
		t.Fatalf("text = %q, want hi", msg.Text)
	}
	if msg.Metadata.Len() != 0 {
		t.Fatalf("metadata = %v, want empty", msg.Metadata.Keys())
	}
}

func TestParseJSONPrecedence(t *testing.T) {
	// `time` outranks `ts`; `msg` outranks `message`
	chain := NewChain(nil)
	msg := chain.Parse(`{"ts":"2001-01-01T00:00:00Z","time":"2020-01-02T03:04:05Z","message":"b","msg":"a"}`, nil)
	if msg.Timestamp == nil || !msg.Timestamp.Equal(mustTime(t, "2020-01-02T03:04:05Z")) {
		t.Fatalf("timestamp = %v, want the `time` field", msg.Timestamp)
	}
	if msg.Text != "a" {
		t.Fatalf("text = %q, want the `msg` field", msg.Text)
	}
	// losing candidates stay in metadata
	if _, ok := msg.Metadata.Get("ts"); !ok {
		t.Fatal("unmapped ts field should remain in metadata")
	}
	if _, ok := msg.Metadata.Get("message"); !ok {
		t.Fatal("unmapped message field should remain in metadata")
	}
}

func TestParseJSONNonStringValues(t *testing.T) {
	chain := NewChain(nil)
	msg := chain.Parse(`{"msg":"hi","count":3,"ok":true,"obj":{"a":1}}`, nil)
	if v, _ := msg.Metadata.Get("count"); v != "3" {
		t.Fatalf("count = %q, want 3", v)
	}
	if v, _ := msg.Metadata.Get("ok"); v != "true" {
		t.Fatalf("ok = %q, want true", v)
	}
	if v, _ := msg.Metadata.Get("obj"); v != `{"a":1}` {
		t.Fatalf("obj = %q, want compact json", v)
	}
}

func TestParseJSONMalformedFallsThrough(t *testing.T) {
	chain := NewChain(nil)
	msg := chain.Parse(`{"msg": oops`, nil)
	if msg.Kind != "plain" {
		t.Fatalf("kind = %q, want plain fallback", msg.Kind)
	}
}

func TestReaderTimestampPreference(t *testing.T) {
	chain := NewChain(nil)
	hint := mustTime(t, "1999-12-31T23:59:59Z")
	meta := &message.ReaderMetadata{Timestamp: &hint}

	// no rfc3339 in the body: the reader hint wins
	msg := chain.Parse("plain message without time", meta)
	if msg.Timestamp == nil || !msg.Timestamp.Equal(hint) {
		t.Fatalf("timestamp = %v, want reader hint", msg.Timestamp)
	}

	// rfc3339 in the body wins over the hint
	msg = chain.Parse(`{"time":"2020-01-02T03:04:05Z","msg":"x"}`, meta)
	if msg.Timestamp == nil || !msg.Timestamp.Equal(mustTime(t, "2020-01-02T03:04:05Z")) {
		t.Fatalf("timestamp = %v, want body rfc3339", msg.Timestamp)
	}
}
