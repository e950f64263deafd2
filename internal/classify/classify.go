package classify

import (
	"strings"

	"github.com/example/woodchipper/internal/message"
)

// A classifier appends zero or more chunks for a message and may mark
// metadata keys as consumed so later classifiers skip them.
type classifier func(msg *message.Message, consumed map[string]struct{}) []Chunk

// The chain runs in fixed order; metadata is terminal and sweeps up
// whatever remains unconsumed.
var classifiers = []classifier{
	classifyTimestamp,
	classifyLevel,
	classifySource,
	classifyText,
	classifyContext,
	classifyMetadata,
}

// Classify runs the classifier chain over a message. Empty chunks are
// elided.
func Classify(msg *message.Message) *ClassifiedMessage {
	consumed := make(map[string]struct{})

	var chunks []Chunk
	for _, c := range classifiers {
		for _, chunk := range c(msg, consumed) {
			if chunk.Empty() {
				continue
			}
			chunks = append(chunks, chunk)
		}
	}

	return &ClassifiedMessage{Message: msg, Chunks: chunks, Consumed: consumed}
}

// classifyTimestamp emits sibling date and time chunks. The date carries
// less weight, so it is the first thing pruned when width runs out.
func classifyTimestamp(msg *message.Message, _ map[string]struct{}) []Chunk {
	date, clock := "-", "-"
	if ts := msg.BestTimestamp(); ts != nil {
		utc := ts.UTC()
		date = utc.Format("2006-01-02")
		clock = utc.Format("15:04:05")
	}

	return []Chunk{
		{
			Text:      date,
			Kind:      KindTimestampDate,
			Slot:      SlotLeft,
			Alignment: AlignRight,
			Weight:    WeightNormal,
		},
		{
			Text:      clock,
			Kind:      KindTimestampTime,
			Slot:      SlotLeft,
			Alignment: AlignRight,
			Weight:    WeightMedium,
			Padding:   1,
		},
	}
}

func classifyLevel(msg *message.Message, _ map[string]struct{}) []Chunk {
	return []Chunk{{
		Text:      msg.Level.String(),
		Kind:      LevelKind(msg.Level),
		Slot:      SlotLeft,
		Alignment: AlignRight,
		Weight:    WeightHigh,
		Padding:   1,
	}}
}

// classifySource surfaces the reader's source label (e.g. pod/container)
// in the right margin.
func classifySource(msg *message.Message, _ map[string]struct{}) []Chunk {
	if msg.Reader == nil || msg.Reader.Source == "" {
		return nil
	}
	return []Chunk{{
		Text:      msg.Reader.Source,
		Kind:      KindContextSource,
		Slot:      SlotRight,
		Alignment: AlignRight,
		Weight:    WeightNormal,
		Padding:   1,
	}}
}

// classifyText emits one chunk per newline-separated segment so embedded
// newlines survive reflow.
func classifyText(msg *message.Message, _ map[string]struct{}) []Chunk {
	if msg.Text == "" {
		return nil
	}
	lines := strings.Split(msg.Text, "\n")
	chunks := make([]Chunk, 0, len(lines))
	for _, line := range lines {
		chunks = append(chunks, Chunk{
			Text:    line,
			Kind:    KindText,
			Slot:    SlotLeft,
			Wrap:    WrapBreakAfter,
			Weight:  WeightHigh,
			Padding: 1,
		})
	}
	return chunks
}

// lastPathComponents trims a path down to its last two components,
// accepting either separator.
func lastPathComponents(path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(parts) <= 2 {
		return strings.Join(parts, "/")
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

// classifyContext lifts a file/caller metadata field into the right margin
// and consumes it.
func classifyContext(msg *message.Message, consumed map[string]struct{}) []Chunk {
	for _, key := range []string{"file", "caller"} {
		value, ok := msg.Metadata.Get(key)
		if !ok || value == "" {
			continue
		}
		consumed[key] = struct{}{}
		return []Chunk{{
			Text:      lastPathComponents(value),
			Kind:      KindContextFile,
			Slot:      SlotRight,
			Alignment: AlignRight,
			Weight:    WeightLow,
			Padding:   1,
		}}
	}
	return nil
}

// classifyMetadata is terminal: one key=value chunk per metadata key not
// already consumed, in insertion order.
func classifyMetadata(msg *message.Message, consumed map[string]struct{}) []Chunk {
	var chunks []Chunk
	for _, key := range msg.Metadata.Keys() {
		if _, ok := consumed[key]; ok {
			continue
		}
		value, _ := msg.Metadata.Get(key)
		if value == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Kind:   KindMetadata,
			Slot:   SlotLeft,
			Weight: WeightMedium,
			Children: []Chunk{
				{
					Text:    key + "=",
					Kind:    KindMetadataKey,
					Slot:    SlotLeft,
					Weight:  WeightMedium,
					Padding: 1,
				},
				{
					Text:   value,
					Kind:   KindMetadataValue,
					Slot:   SlotLeft,
					Weight: WeightMedium,
				},
			},
		})
	}
	return chunks
}

// Internal classifies an operator notice in one step.
func Internal(level message.Level, text string) *ClassifiedMessage {
	return Classify(message.Internal(level, text))
}
