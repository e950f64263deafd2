package parser

import (
	"fmt"
	"testing"
	"time"

	"github.com/example/woodchipper/internal/message"
)

func TestParseKlog(t *testing.T) {
	msg := parseKlog("I0102 03:04:05.000000    1 main.go:10] hello", nil)
	if msg == nil {
		t.Fatal("parseKlog returned nil for a valid line")
	}
	if msg.Kind != "klog" {
		t.Fatalf("kind = %q, want klog", msg.Kind)
	}
	if msg.Level != message.LevelInfo {
		t.Fatalf("level = %v, want info", msg.Level)
	}
	if msg.Text != "hello" {
		t.Fatalf("text = %q, want hello", msg.Text)
	}

	want := fmt.Sprintf("%d-01-02T03:04:05Z", time.Now().UTC().Year())
	if msg.Timestamp == nil || msg.Timestamp.UTC().Format(time.RFC3339) != want {
		t.Fatalf("timestamp = %v, want %s (current UTC year supplied)", msg.Timestamp, want)
	}

	if v, _ := msg.Metadata.Get("file"); v != "main.go:10" {
		t.Fatalf("metadata file = %q, want main.go:10", v)
	}
}

func TestParseKlogLevels(t *testing.T) {
	cases := []struct {
		prefix string
		want   message.Level
	}{
		{"I", message.LevelInfo},
		{"W", message.LevelWarn},
		{"E", message.LevelError},
		{"F", message.LevelFatal},
	}
	for _, tc := range cases {
		t.Run(tc.prefix, func(t *testing.T) {
			line := tc.prefix + "0607 19:28:33.579841     10 controller.go:293] msg"
			msg := parseKlog(line, nil)
			if msg == nil {
				t.Fatalf("parseKlog(%q) = nil", line)
			}
			if msg.Level != tc.want {
				t.Fatalf("level = %v, want %v", msg.Level, tc.want)
			}
		})
	}
}

func TestParseKlogRejects(t *testing.T) {
	inputs := []string{
		"X0102 03:04:05.000000    1 main.go:10] hello",
		"I0102 03:04:05    1 main.go:10] hello",
		"I0102 03:04:05.000000 main.go:10] hello",
		"plain text",
		"",
	}
	for _, in := range inputs {
		if msg := parseKlog(in, nil); msg != nil {
			t.Fatalf("parseKlog(%q) = %+v, want nil", in, msg)
		}
	}
}
