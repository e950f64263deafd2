// Package render lays classified chunks out into display rows and provides
// the non-interactive renderers (json, plain, raw, styled). The interactive
// pager reuses the same layout engine for its wrap cache.
package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/example/woodchipper/internal/classify"
)

// Span is a laid-out fragment of a display row.
type Span struct {
	Text      string
	Width     int
	Kind      classify.Kind
	Weight    int
	Padding   int
	Wrap      classify.Wrap
	Alignment classify.Alignment
}

// Row is one display row: flowing left-slot spans, plus right-slot context
// placed on the first row when it fits.
type Row struct {
	Spans []Span
	Right []Span
}

// Fixed column widths keep the date/time/level gutter stable across rows.
func fixedWidth(kind classify.Kind) (int, bool) {
	switch {
	case kind == classify.KindTimestampDate:
		return 10, true
	case kind == classify.KindTimestampTime:
		return 8, true
	case kind.Parent() == "level" || kind == "level":
		return 7, true
	}
	return 0, false
}

// pruneCutoff picks the minimum chunk weight displayed at a width; lower
// weights are skipped so key information survives narrow terminals.
func pruneCutoff(width int) int {
	switch {
	case width <= 0:
		return classify.WeightLow
	case width < 60:
		return classify.WeightHigh
	case width < 80:
		return classify.WeightMedium
	case width < 100:
		return classify.WeightNormal
	}
	return classify.WeightLow
}

func alignText(text string, width int, alignment classify.Alignment) string {
	pad := width - runewidth.StringWidth(text)
	if pad <= 0 {
		return text
	}
	if alignment == classify.AlignRight {
		return strings.Repeat(" ", pad) + text
	}
	return text + strings.Repeat(" ", pad)
}

// flatten walks chunks and their children for one slot, dropping chunks
// below minWeight and applying fixed-width alignment.
func flatten(chunks []classify.Chunk, slot classify.Slot, minWeight int) []Span {
	var spans []Span
	for i := range chunks {
		spans = appendSpans(spans, &chunks[i], slot, minWeight)
	}
	return spans
}

func appendSpans(spans []Span, chunk *classify.Chunk, slot classify.Slot, minWeight int) []Span {
	// the center slot flows with the left region
	effective := chunk.Slot
	if effective == classify.SlotCenter {
		effective = classify.SlotLeft
	}
	if effective != slot || chunk.Weight < minWeight {
		return spans
	}

	if chunk.Text != "" {
		text := chunk.Text
		if w, ok := fixedWidth(chunk.Kind); ok {
			text = alignText(text, w, chunk.Alignment)
		}
		spans = append(spans, Span{
			Text:      text,
			Width:     runewidth.StringWidth(text),
			Kind:      chunk.Kind,
			Weight:    chunk.Weight,
			Padding:   chunk.Padding,
			Wrap:      chunk.Wrap,
			Alignment: chunk.Alignment,
		})
	}
	for i := range chunk.Children {
		spans = appendSpans(spans, &chunk.Children[i], slot, minWeight)
	}
	return spans
}

// splitSpan word-wraps a wrappable span: the first piece fills `first`
// cells, continuations fill `rest`. Single words longer than a line are
// broken mid-word.
func splitSpan(s Span, first, rest int) []Span {
	if first <= 0 {
		first = rest
	}
	if rest <= 0 {
		return []Span{s}
	}

	words := strings.Split(s.Text, " ")
	var pieces []Span
	limit := first
	var line strings.Builder
	lineWidth := 0

	flush := func() {
		piece := s
		piece.Text = line.String()
		piece.Width = runewidth.StringWidth(piece.Text)
		if len(pieces) > 0 {
			piece.Padding = 0
		}
		pieces = append(pieces, piece)
		line.Reset()
		lineWidth = 0
		limit = rest
	}

	for _, word := range words {
		w := runewidth.StringWidth(word)
		sep := 0
		if lineWidth > 0 {
			sep = 1
		}
		if lineWidth+sep+w > limit && lineWidth > 0 {
			flush()
			sep = 0
		}
		// break an over-long word into cell-sized pieces
		for runewidth.StringWidth(word) > limit {
			cut := runewidth.Truncate(word, limit-lineWidth-sep, "")
			if cut == "" {
				break
			}
			if sep > 0 {
				line.WriteByte(' ')
			}
			line.WriteString(cut)
			lineWidth += sep + runewidth.StringWidth(cut)
			flush()
			sep = 0
			word = strings.TrimPrefix(word, cut)
			w = runewidth.StringWidth(word)
		}
		if word == "" {
			continue
		}
		if sep > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
		lineWidth += sep + w
	}
	if line.Len() > 0 || len(pieces) == 0 {
		flush()
	}
	return pieces
}

// rightThreshold is the minimum clearance between flowing content and the
// right-slot column.
const rightThreshold = 2

// minWrapRemainder is the narrowest tail of a row worth starting wrapped
// text in.
const minWrapRemainder = 8

func measure(spans []Span) int {
	width := 0
	for i, s := range spans {
		if i > 0 {
			width += s.Padding
		}
		width += s.Width
	}
	return width
}

// Layout computes the display rows for a classified message at the given
// width. A width <= 0 disables wrapping and pruning; rows then break only
// at forced breaks.
func Layout(cm *classify.ClassifiedMessage, width int) []Row {
	minWeight := pruneCutoff(width)
	left := flatten(cm.Chunks, classify.SlotLeft, minWeight)
	right := flatten(cm.Chunks, classify.SlotRight, minWeight)

	var rows []Row
	var cur []Span
	curWidth := 0

	newRow := func() {
		rows = append(rows, Row{Spans: cur})
		cur = nil
		curWidth = 0
	}

	// a break-after span ends its row only when another break-after span
	// (the next text segment) follows; later chunks continue on its row
	breaksAfter := func(i int) bool {
		return left[i].Wrap == classify.WrapBreakAfter &&
			i+1 < len(left) && left[i+1].Wrap == classify.WrapBreakAfter
	}

	for i, s := range left {
		if s.Wrap == classify.WrapBreakBefore && len(cur) > 0 {
			newRow()
		}

		pad := 0
		if len(cur) > 0 {
			pad = s.Padding
		}

		if width > 0 && curWidth+pad+s.Width > width {
			if s.Wrap == classify.WrapWrap || s.Wrap == classify.WrapBreakAfter {
				remaining := width - curWidth - pad
				if remaining < minWrapRemainder && len(cur) > 0 {
					newRow()
					pad = 0
					remaining = width
				}
				pieces := splitSpan(s, remaining, width)
				for j, piece := range pieces {
					if j > 0 {
						newRow()
						pad = 0
					}
					cur = append(cur, piece)
					curWidth += pad + piece.Width
				}
				if breaksAfter(i) {
					newRow()
				}
				continue
			}
			if len(cur) > 0 {
				newRow()
				pad = 0
			}
		}

		cur = append(cur, s)
		curWidth += pad + s.Width

		if breaksAfter(i) {
			newRow()
		}
	}
	if len(cur) > 0 || len(rows) == 0 {
		newRow()
	}

	// drop trailing all-empty rows left behind by forced breaks
	for len(rows) > 1 && len(rows[len(rows)-1].Spans) == 0 {
		rows = rows[:len(rows)-1]
	}

	// place right-slot context on the first row when the remaining width
	// clears the threshold; otherwise it is dropped from display
	if len(right) > 0 && width > 0 {
		rightWidth := measure(right)
		if measure(rows[0].Spans)+rightThreshold+rightWidth <= width {
			rows[0].Right = right
		}
	}

	return rows
}
