package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/example/woodchipper/internal/parser"
	"github.com/example/woodchipper/internal/style"
)

func TestJSONRendererOutput(t *testing.T) {
	var buf bytes.Buffer
	r := &JSONRenderer{Out: &buf}
	if err := r.Render(classified(t, jsonSample)); err != nil {
		t.Fatalf("render: %v", err)
	}

	want := `{"kind":"json","timestamp":"2020-01-02T03:04:05Z","level":"info","text":"hello","metadata":{"user":"a"}}` + "\n"
	if buf.String() != want {
		t.Fatalf("json output = %q, want %q", buf.String(), want)
	}
}

func TestJSONRendererOmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	r := &JSONRenderer{Out: &buf}
	if err := r.Render(classified(t, `{"msg":"hi"}`)); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, field := range []string{"timestamp", "level", "metadata"} {
		if strings.Contains(out, `"`+field+`"`) {
			t.Fatalf("output %q should omit %s", out, field)
		}
	}
}

// Feeding json output back through the pipeline must be idempotent on the
// normalized fields.
func TestJSONRendererRoundTrip(t *testing.T) {
	var first bytes.Buffer
	r := &JSONRenderer{Out: &first}
	if err := r.Render(classified(t, jsonSample)); err != nil {
		t.Fatalf("render: %v", err)
	}

	var second bytes.Buffer
	r2 := &JSONRenderer{Out: &second}
	line := strings.TrimSuffix(first.String(), "\n")
	if err := r2.Render(classified(t, line)); err != nil {
		t.Fatalf("re-render: %v", err)
	}

	if first.String() != second.String() {
		t.Fatalf("round trip diverged:\n first = %q\nsecond = %q", first.String(), second.String())
	}
}

func TestPlainRendererOutput(t *testing.T) {
	var buf bytes.Buffer
	r := &PlainRenderer{Out: &buf}
	if err := r.Render(classified(t, jsonSample)); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "2020-01-02 03:04:05    info hello user=a\n"
	if buf.String() != want {
		t.Fatalf("plain output = %q, want %q", buf.String(), want)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatal("plain output must contain no ANSI sequences")
	}
}

func TestRawRendererOutput(t *testing.T) {
	var buf bytes.Buffer
	r := &RawRenderer{Out: &buf}
	if err := r.Render(classified(t, jsonSample)); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != jsonSample+"\n" {
		t.Fatalf("raw output = %q, want the input line", buf.String())
	}
}

func TestStyledRendererWrapsToWidth(t *testing.T) {
	st, err := style.Resolve("none")
	if err != nil {
		t.Fatalf("resolve style: %v", err)
	}

	long := `{"msg":"` + strings.Repeat("word ", 40) + `end"}`
	var buf bytes.Buffer
	r := &StyledRenderer{
		Out:           &buf,
		Style:         st,
		FallbackWidth: 120,
		WidthFn:       func() int { return 60 },
	}
	if err := r.Render(classified(t, long)); err != nil {
		t.Fatalf("render: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected wrapped output, got %d line(s)", len(lines))
	}
	for i, line := range lines {
		if len(line) > 60 {
			t.Fatalf("line %d is %d bytes, want <= 60", i, len(line))
		}
	}
}

func TestStyledRendererFallbackWidth(t *testing.T) {
	st, err := style.Resolve("none")
	if err != nil {
		t.Fatalf("resolve style: %v", err)
	}
	r := &StyledRenderer{
		Out:           &bytes.Buffer{},
		Style:         st,
		FallbackWidth: 33,
		WidthFn:       func() int { return 0 },
	}
	if got := r.width(); got != 33 {
		t.Fatalf("width = %d, want fallback 33", got)
	}
}

func TestMarshalMessagePlain(t *testing.T) {
	chain := parser.NewChain(nil)
	msg := chain.Parse("hello world", nil)
	data, err := MarshalMessage(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"kind":"plain","text":"hello world"}` {
		t.Fatalf("marshal = %s", data)
	}
}
