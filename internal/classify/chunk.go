// Package classify turns normalized Messages into render chunks: styled,
// slotted, weighted text spans carrying the layout hints the renderers
// consume.
package classify

import (
	"strings"

	"github.com/example/woodchipper/internal/message"
)

// Kind tags a chunk for styling. Kinds form a dash-separated hierarchy;
// style lookup falls back to the parent prefix (e.g. "level-info" →
// "level").
type Kind string

const (
	KindTimestampDate Kind = "timestamp-date"
	KindTimestampTime Kind = "timestamp-time"
	KindText          Kind = "text"
	KindMetadata      Kind = "metadata"
	KindMetadataKey   Kind = "metadata-key"
	KindMetadataValue Kind = "metadata-value"
	KindContextFile   Kind = "context-file"
	KindContextSource Kind = "context-source"
)

// LevelKind returns the kind for a severity chunk, e.g. "level-info".
func LevelKind(l message.Level) Kind {
	return Kind("level-" + l.String())
}

// Parent returns the enclosing kind prefix, or "" at the root.
func (k Kind) Parent() Kind {
	s := string(k)
	i := strings.LastIndexByte(s, '-')
	if i < 0 {
		return ""
	}
	return Kind(s[:i])
}

// Slot is the display region a chunk is placed within.
type Slot int

const (
	SlotLeft Slot = iota
	SlotCenter
	SlotRight
)

// Alignment positions chunk content within a fixed-width column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Wrap controls reflow behavior.
type Wrap int

const (
	// WrapNone keeps the chunk atomic on its line.
	WrapNone Wrap = iota

	// WrapWrap allows the chunk to be split at spaces during reflow.
	WrapWrap

	// WrapBreakBefore starts a fresh display row before the chunk.
	WrapBreakBefore

	// WrapBreakAfter allows internal wrapping and forces a row break
	// between consecutive break-after chunks, so embedded newlines survive
	// reflow. Chunks of other wrap modes that follow continue on the row.
	WrapBreakAfter
)

// Chunk weights; chunks below a width-dependent cutoff are pruned so key
// information survives narrow terminals.
const (
	WeightLow    = -10
	WeightNormal = 0
	WeightMedium = 10
	WeightHigh   = 20
)

// Chunk is the unit of layout produced by classifiers.
type Chunk struct {
	// Text is the displayable string. Leaf text contains no newlines.
	Text string

	Kind      Kind
	Slot      Slot
	Alignment Alignment
	Wrap      Wrap

	// Weight is the rendering priority; higher is kept when width is
	// scarce.
	Weight int

	// Padding is the number of cells of separation preceding the chunk.
	Padding int

	// Children are ordered sub-chunks inheriting slot and weight, used so
	// sub-spans can be styled without disturbing wrap.
	Children []Chunk
}

// Empty reports whether the chunk carries no displayable content.
func (c *Chunk) Empty() bool {
	if c.Text != "" {
		return false
	}
	for i := range c.Children {
		if !c.Children[i].Empty() {
			return false
		}
	}
	return true
}

// ClassifiedMessage pairs a message with its render chunks and the set of
// metadata keys consumed by specific classifiers.
type ClassifiedMessage struct {
	Message  *message.Message
	Chunks   []Chunk
	Consumed map[string]struct{}
}
