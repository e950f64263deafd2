package ui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/example/woodchipper/internal/render"
	"github.com/example/woodchipper/internal/style"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderLog())
	b.WriteString(m.renderBar())
	return b.String()
}

// highlightRegex is the regex currently driving match highlighting, if
// any.
func (m *Model) highlightRegex() *regexp.Regexp {
	switch m.mode {
	case ModeSearching:
		return m.live
	case ModeSearchActive:
		return m.search
	}
	return nil
}

// profileFor picks the display profile for one message.
func (m *Model) profileFor(viewIdx int, e *entry) *style.Profile {
	if viewIdx == m.cursor && !m.follow {
		return &m.styles.Selected
	}
	if re := m.highlightRegex(); re != nil && re.MatchString(e.plain) {
		return &m.styles.Highlighted
	}
	return &m.styles.Normal
}

// renderLog paints the message pane: logHeight rows starting at the
// viewport anchor, blank-filled when the log is shorter than the screen.
func (m Model) renderLog() string {
	height := m.logHeight()
	view := m.view()

	lines := make([]string, 0, height)
	skip := m.topRow
	for i := m.top; i < len(view) && len(lines) < height; i++ {
		e := m.entries[view[i]]
		profile := m.profileFor(i, e)
		selected := viewIdxSelected(i, m.cursor, m.follow)
		for _, row := range m.rowsFor(e) {
			if skip > 0 {
				skip--
				continue
			}
			if len(lines) >= height {
				break
			}
			lines = append(lines, render.StyleRow(row, profile, m.width, selected))
		}
	}
	for len(lines) < height {
		lines = append(lines, "")
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func viewIdxSelected(i, cursor int, follow bool) bool {
	return i == cursor && !follow
}

// renderBar paints the bottom row: the status bar, or the filter/search
// input line.
func (m Model) renderBar() string {
	switch m.mode {
	case ModeFiltering:
		return m.renderInputBar("filter > ")
	case ModeSearching:
		return m.renderInputBar("find > ")
	}
	return m.renderStatusBar()
}

// renderInputBar shows the live input; invalid regexes highlight red, and
// matching is disabled until the input compiles again.
func (m Model) renderInputBar(prompt string) string {
	base := m.styles.Selected.Base()

	var b strings.Builder
	b.WriteString(base.Render(prompt))
	value := m.input.Value()
	if m.liveInvalid {
		b.WriteString(m.styles.ErrorText().Render(value))
	} else {
		b.WriteString(base.Render(value))
	}
	b.WriteString(base.Render("█"))

	used := runewidth.StringWidth(prompt) + runewidth.StringWidth(value) + 1
	if pad := m.width - used; pad > 0 {
		b.WriteString(base.Render(strings.Repeat(" ", pad)))
	}
	return b.String()
}

// statusLeft is the help text; statusRight summarizes position, filters
// and end-of-stream.
func (m Model) statusLeft() string {
	parts := []string{"q: quit", "f: filter", "/: find"}
	if !m.follow {
		parts = append(parts, "c: copy msg")
	}
	parts = append(parts, "C: copy screen")
	if len(m.filters) > 0 {
		parts = append(parts, "p: pop filter")
	}
	if m.mode == ModeSearchActive {
		parts = append(parts, "n: next", "esc: clear find")
	}
	return strings.Join(parts, " | ")
}

func (m Model) statusRight() string {
	view := m.view()

	var count string
	if !m.follow && m.cursor >= 0 {
		count = fmt.Sprintf("%d / %d", m.cursor+1, len(view))
	} else {
		count = fmt.Sprintf("%d", len(view))
	}

	filters := ""
	if n := len(m.filters); n > 0 {
		plural := "s"
		if n == 1 {
			plural = ""
		}
		filters = fmt.Sprintf(" (%d filter%s, %d total)", n, plural, len(m.entries))
	}

	eof := ""
	if m.eof {
		eof = " (eof)"
	}

	return count + filters + eof
}

// renderStatusBar prioritizes the right side; the left is only help text.
func (m Model) renderStatusBar() string {
	base := m.styles.Selected.Base()
	left := m.statusLeft()
	right := m.statusRight()

	leftWidth := runewidth.StringWidth(left)
	rightWidth := runewidth.StringWidth(right)

	var content string
	switch {
	case leftWidth+rightWidth < m.width:
		content = left + strings.Repeat(" ", m.width-leftWidth-rightWidth) + right
	case rightWidth <= m.width:
		content = strings.Repeat(" ", m.width-rightWidth) + right
	default:
		content = strings.Repeat(" ", m.width)
	}
	return base.Render(content)
}
