package render

import (
	"strings"

	"github.com/example/woodchipper/internal/classify"
	"github.com/example/woodchipper/internal/style"
)

// PlainLines renders a message without styling: left-slot content only,
// chunks joined by single spaces, broken only at forced breaks.
func PlainLines(cm *classify.ClassifiedMessage) []string {
	rows := Layout(cm, 0)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var b strings.Builder
		for i, s := range row.Spans {
			if i > 0 && s.Padding > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(s.Text)
		}
		lines = append(lines, b.String())
	}
	return lines
}

// FilterText is the plaintext the filter and search engines match against:
// the plain rendering with rows joined by single spaces.
func FilterText(cm *classify.ClassifiedMessage) string {
	return strings.Join(PlainLines(cm), " ")
}

// styledSpaces paints filler cells, keeping the base background when the
// profile is opaque.
func styledSpaces(b *strings.Builder, profile *style.Profile, n int) {
	if n <= 0 {
		return
	}
	spaces := strings.Repeat(" ", n)
	if profile.Opaque() {
		b.WriteString(profile.Base().Render(spaces))
	} else {
		b.WriteString(spaces)
	}
}

// StyleRow renders one laid-out row with terminal attributes from the
// profile. When fill is set the line is padded to the full width, which
// opaque profiles need for their background.
func StyleRow(row Row, profile *style.Profile, width int, fill bool) string {
	var b strings.Builder
	lineWidth := 0

	for i, s := range row.Spans {
		pad := 0
		if i > 0 {
			pad = s.Padding
		}
		styledSpaces(&b, profile, pad)
		b.WriteString(profile.For(s.Kind).Render(s.Text))
		lineWidth += pad + s.Width
	}

	if len(row.Right) > 0 && width > 0 {
		rightWidth := measure(row.Right)
		styledSpaces(&b, profile, width-lineWidth-rightWidth)
		for i, s := range row.Right {
			if i > 0 {
				styledSpaces(&b, profile, s.Padding)
			}
			b.WriteString(profile.For(s.Kind).Render(s.Text))
		}
		lineWidth = width
	}

	if fill && width > 0 && lineWidth < width {
		styledSpaces(&b, profile, width-lineWidth)
	}

	return b.String()
}

// StyledLines renders a message wrapped to width with terminal attributes
// from the profile.
func StyledLines(cm *classify.ClassifiedMessage, profile *style.Profile, width int, fill bool) []string {
	rows := Layout(cm, width)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, StyleRow(row, profile, width, fill))
	}
	return lines
}
