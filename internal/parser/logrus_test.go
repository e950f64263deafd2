package parser

import (
	"testing"
	"time"

	"github.com/example/woodchipper/internal/message"
)

func TestLogrusPairs(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []kv
	}{
		{"bare", "foo=bar", []kv{{"foo", "bar"}}},
		{"quoted", `foo="bar"`, []kv{{"foo", "bar"}}},
		{"quoted_spaces", `foo="hello world"`, []kv{{"foo", "hello world"}}},
		{"escaped", `foo="hello \"world\""`, []kv{{"foo", `hello "world"`}}},
		{"number", "foo=1", []kv{{"foo", "1"}}},
		{"struct_ref", "foo=&{bar}", []kv{{"foo", "&{bar}"}}},
		{"multiple", `a=1 b="two" c=three`, []kv{{"a", "1"}, {"b", "two"}, {"c", "three"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := logrusPairs(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("logrusPairs(%q) = %v, want %v", tc.in, got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("pair %d = %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestLogrusPairsInvalid(t *testing.T) {
	inputs := []string{
		"foo",
		"foo=",
		`foo="`,
		`foo="unterminated`,
		"",
		"plain text here",
		"{json}",
	}
	for _, in := range inputs {
		if got := logrusPairs(in); got != nil {
			t.Fatalf("logrusPairs(%q) = %v, want nil", in, got)
		}
	}
}

func TestParseLogrusMessage(t *testing.T) {
	line := `time="2015-03-26T01:27:38-04:00" level=debug msg="Started observing beach" animal=walrus number=8`
	msg := parseLogrus(line, nil)
	if msg == nil {
		t.Fatal("parseLogrus returned nil for a valid line")
	}
	if msg.Kind != "logrus" {
		t.Fatalf("kind = %q, want logrus", msg.Kind)
	}
	want, _ := time.Parse(time.RFC3339, "2015-03-26T05:27:38Z")
	if msg.Timestamp == nil || !msg.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v (normalized to UTC)", msg.Timestamp, want)
	}
	if msg.Level != message.LevelDebug {
		t.Fatalf("level = %v, want debug", msg.Level)
	}
	if msg.Text != "Started observing beach" {
		t.Fatalf("text = %q", msg.Text)
	}
	if v, _ := msg.Metadata.Get("animal"); v != "walrus" {
		t.Fatalf("animal = %q, want walrus", v)
	}
	if v, _ := msg.Metadata.Get("number"); v != "8" {
		t.Fatalf("number = %q, want 8", v)
	}
}

func TestParseLogrusRejectsPlainText(t *testing.T) {
	if msg := parseLogrus("just some words", nil); msg != nil {
		t.Fatalf("parseLogrus should reject plain text, got %+v", msg)
	}
}
