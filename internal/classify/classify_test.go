package classify

import (
	"testing"
	"time"

	"github.com/example/woodchipper/internal/message"
)

func testMessage() *message.Message {
	ts := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	md := message.NewMetadata()
	md.Set("user", "a")
	return &message.Message{
		Kind:      "json",
		Timestamp: &ts,
		Level:     message.LevelInfo,
		Raw:       `{"msg":"hello"}`,
		Text:      "hello",
		Metadata:  md,
	}
}

func chunksOfKind(cm *ClassifiedMessage, kind Kind) []Chunk {
	var out []Chunk
	for _, c := range cm.Chunks {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func TestClassifyTimestampChunks(t *testing.T) {
	cm := Classify(testMessage())

	dates := chunksOfKind(cm, KindTimestampDate)
	times := chunksOfKind(cm, KindTimestampTime)
	if len(dates) != 1 || len(times) != 1 {
		t.Fatalf("want 1 date and 1 time chunk, got %d and %d", len(dates), len(times))
	}
	if dates[0].Text != "2020-01-02" {
		t.Fatalf("date = %q", dates[0].Text)
	}
	if times[0].Text != "03:04:05" {
		t.Fatalf("time = %q", times[0].Text)
	}
	// width pruning drops the date before the time
	if dates[0].Weight >= times[0].Weight {
		t.Fatalf("date weight %d should be below time weight %d",
			dates[0].Weight, times[0].Weight)
	}
}

func TestClassifyMissingTimestamp(t *testing.T) {
	msg := testMessage()
	msg.Timestamp = nil
	cm := Classify(msg)

	if got := chunksOfKind(cm, KindTimestampDate)[0].Text; got != "-" {
		t.Fatalf("date placeholder = %q, want -", got)
	}
	if got := chunksOfKind(cm, KindTimestampTime)[0].Text; got != "-" {
		t.Fatalf("time placeholder = %q, want -", got)
	}
}

func TestClassifyLevelChunk(t *testing.T) {
	cm := Classify(testMessage())
	levels := chunksOfKind(cm, LevelKind(message.LevelInfo))
	if len(levels) != 1 {
		t.Fatalf("want 1 level chunk, got %d", len(levels))
	}
	if levels[0].Text != "info" {
		t.Fatalf("level text = %q", levels[0].Text)
	}
	if levels[0].Kind != "level-info" {
		t.Fatalf("level kind = %q, want level-info", levels[0].Kind)
	}
}

func TestClassifyTextNewlines(t *testing.T) {
	msg := testMessage()
	msg.Text = "line one\nline two\nline three"
	cm := Classify(msg)

	texts := chunksOfKind(cm, KindText)
	if len(texts) != 3 {
		t.Fatalf("want 3 text chunks, got %d", len(texts))
	}
	for i, want := range []string{"line one", "line two", "line three"} {
		if texts[i].Text != want {
			t.Fatalf("text[%d] = %q, want %q", i, texts[i].Text, want)
		}
		if texts[i].Wrap != WrapBreakAfter {
			t.Fatalf("text[%d] wrap = %v, want WrapBreakAfter", i, texts[i].Wrap)
		}
	}
}

func TestClassifyContextConsumesFile(t *testing.T) {
	msg := testMessage()
	msg.Metadata.Set("file", "pkg/sub/dir/main.go:10")
	cm := Classify(msg)

	ctx := chunksOfKind(cm, KindContextFile)
	if len(ctx) != 1 {
		t.Fatalf("want 1 context chunk, got %d", len(ctx))
	}
	if ctx[0].Text != "dir/main.go:10" {
		t.Fatalf("context = %q, want last two path components", ctx[0].Text)
	}
	if ctx[0].Slot != SlotRight {
		t.Fatalf("context slot = %v, want right", ctx[0].Slot)
	}
	if _, ok := cm.Consumed["file"]; !ok {
		t.Fatal("file key should be marked consumed")
	}

	// the metadata classifier must not emit a chunk for the consumed key
	for _, c := range chunksOfKind(cm, KindMetadata) {
		for _, child := range c.Children {
			if child.Kind == KindMetadataKey && child.Text == "file=" {
				t.Fatal("consumed file key leaked into metadata chunks")
			}
		}
	}
}

func TestClassifyCallerFallback(t *testing.T) {
	msg := testMessage()
	msg.Metadata.Set("caller", "controller.go:293")
	cm := Classify(msg)
	ctx := chunksOfKind(cm, KindContextFile)
	if len(ctx) != 1 || ctx[0].Text != "controller.go:293" {
		t.Fatalf("caller context = %+v", ctx)
	}
	if _, ok := cm.Consumed["caller"]; !ok {
		t.Fatal("caller key should be marked consumed")
	}
}

func TestClassifyMetadataOrder(t *testing.T) {
	msg := testMessage()
	msg.Metadata.Set("zed", "1")
	msg.Metadata.Set("alpha", "2")
	cm := Classify(msg)

	var keys []string
	for _, c := range chunksOfKind(cm, KindMetadata) {
		for _, child := range c.Children {
			if child.Kind == KindMetadataKey {
				keys = append(keys, child.Text)
			}
		}
	}
	want := []string{"user=", "zed=", "alpha="}
	if len(keys) != len(want) {
		t.Fatalf("metadata keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("metadata key %d = %q, want %q (insertion order)", i, keys[i], want[i])
		}
	}
}

func TestClassifySourceChunk(t *testing.T) {
	msg := testMessage()
	msg.Reader = &message.ReaderMetadata{Source: "pod-1/app"}
	cm := Classify(msg)
	src := chunksOfKind(cm, KindContextSource)
	if len(src) != 1 || src[0].Text != "pod-1/app" {
		t.Fatalf("source chunks = %+v", src)
	}
	if src[0].Slot != SlotRight {
		t.Fatalf("source slot = %v, want right", src[0].Slot)
	}
}

func TestClassifyElidesEmptyChunks(t *testing.T) {
	msg := testMessage()
	msg.Text = ""
	msg.Metadata.Set("empty", "")
	cm := Classify(msg)

	for _, c := range cm.Chunks {
		if c.Empty() {
			t.Fatalf("empty chunk survived classification: %+v", c)
		}
	}
	if len(chunksOfKind(cm, KindText)) != 0 {
		t.Fatal("no text chunks expected for an empty body")
	}
}

func TestKindParent(t *testing.T) {
	if got := Kind("level-info").Parent(); got != "level" {
		t.Fatalf("Parent(level-info) = %q, want level", got)
	}
	if got := Kind("timestamp-date").Parent(); got != "timestamp" {
		t.Fatalf("Parent(timestamp-date) = %q, want timestamp", got)
	}
	if got := Kind("text").Parent(); got != "" {
		t.Fatalf("Parent(text) = %q, want empty", got)
	}
}
