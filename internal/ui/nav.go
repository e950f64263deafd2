package ui

import (
	"fmt"
	"regexp"

	"github.com/example/woodchipper/internal/message"
	"github.com/example/woodchipper/internal/render"
)

// logHeight is the number of rows available to the message pane; the last
// row belongs to the status/input bar.
func (m *Model) logHeight() int {
	if m.height <= 1 {
		return 0
	}
	return m.height - 1
}

// rowsFor returns the wrap cache for one entry, recomputing it when the
// width changed since it was built. Width-invariant state changes leave
// the cache untouched.
func (m *Model) rowsFor(e *entry) []render.Row {
	if e.layout == nil || e.layoutWidth != m.width {
		e.layout = render.Layout(e.cm, m.width)
		e.layoutWidth = m.width
	}
	return e.layout
}

func (m *Model) rowCount(viewIdx int) int {
	view := m.view()
	return len(m.rowsFor(m.entries[view[viewIdx]]))
}

// clearSelection returns to follow mode: the cursor pins to the tail and
// auto-advances on append.
func (m *Model) clearSelection() {
	view := m.view()
	m.follow = true
	m.cursor = len(view) - 1
	m.scrollToBottom()
}

// moveCursor moves the selection by delta messages, clamping to the view.
// Moving onto the last message re-enters follow mode.
func (m *Model) moveCursor(delta int) {
	view := m.view()
	if len(view) == 0 {
		return
	}
	cursor := m.cursor
	if cursor < 0 {
		cursor = len(view) - 1
	}
	cursor += delta
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(view)-1 {
		m.clearSelection()
		return
	}
	m.cursor = cursor
	m.follow = false
	m.ensureCursorVisible()
}

func (m *Model) cursorToTop() {
	if len(m.view()) == 0 {
		return
	}
	m.cursor = 0
	m.follow = false
	m.top = 0
	m.topRow = 0
}

// movePage moves the cursor by roughly one screen of messages.
func (m *Model) movePage(direction int) {
	first, last := m.visibleRange()
	span := last - first
	if span < 1 {
		span = 1
	}
	m.moveCursor(direction * span)
}

// scrollToBottom anchors the viewport so the tail is visible.
func (m *Model) scrollToBottom() {
	view := m.view()
	height := m.logHeight()
	if len(view) == 0 || height == 0 {
		m.top, m.topRow = 0, 0
		return
	}

	rows := 0
	top := len(view) - 1
	for top >= 0 {
		rows += m.rowCount(top)
		if rows >= height {
			break
		}
		top--
	}
	if top < 0 {
		m.top, m.topRow = 0, 0
		return
	}
	m.top = top
	m.topRow = rows - height
	if m.topRow < 0 {
		m.topRow = 0
	}
}

// ensureCursorVisible scrolls the viewport the minimum amount needed to
// show the cursor message.
func (m *Model) ensureCursorVisible() {
	view := m.view()
	height := m.logHeight()
	if len(view) == 0 || height == 0 {
		m.top, m.topRow = 0, 0
		return
	}
	if m.follow || m.cursor < 0 {
		m.scrollToBottom()
		return
	}
	if m.cursor >= len(view) {
		m.cursor = len(view) - 1
	}
	if m.top >= len(view) {
		m.top, m.topRow = 0, 0
	}

	if m.cursor <= m.top {
		m.top = m.cursor
		m.topRow = 0
		return
	}

	// is the cursor fully below the window? walk from top to find out
	rows := -m.topRow
	for i := m.top; i <= m.cursor; i++ {
		rows += m.rowCount(i)
	}
	if rows <= height {
		return
	}

	// anchor the cursor's last row to the bottom of the window
	excess := 0
	top := m.cursor
	total := m.rowCount(top)
	for top > 0 && total < height {
		total += m.rowCount(top - 1)
		top--
	}
	if total > height {
		excess = total - height
	}
	m.top = top
	m.topRow = excess
}

// visibleRange reports the first and last view indexes with at least one
// visible row.
func (m *Model) visibleRange() (int, int) {
	view := m.view()
	height := m.logHeight()
	if len(view) == 0 || height == 0 {
		return 0, -1
	}
	if m.top >= len(view) {
		return 0, -1
	}

	rows := -m.topRow
	last := m.top
	for i := m.top; i < len(view); i++ {
		if rows >= height {
			break
		}
		rows += m.rowCount(i)
		last = i
	}
	return m.top, last
}

// jumpMatch moves the cursor to the next (direction > 0) or previous
// match of re in the view, wrapping around. When soft is set the cursor
// stays put if it already matches.
func (m *Model) jumpMatch(re *regexp.Regexp, direction int, soft bool) {
	view := m.view()
	if re == nil || len(view) == 0 {
		return
	}

	start := m.cursor
	if start < 0 {
		start = 0
		soft = true
	}

	if soft && start < len(view) && re.MatchString(m.entries[view[start]].plain) {
		m.setCursor(start)
		return
	}

	n := len(view)
	for step := 1; step <= n; step++ {
		i := (start + direction*step%n + n) % n
		if re.MatchString(m.entries[view[i]].plain) {
			m.setCursor(i)
			return
		}
	}

	m.internalNotice(message.LevelWarn, "no matches in view")
}

// setCursor selects a view index directly. Follow mode stays on only when
// the index is the last message of the view.
func (m *Model) setCursor(i int) {
	view := m.view()
	if i < 0 || i >= len(view) {
		return
	}
	m.cursor = i
	m.follow = i == len(view)-1
	m.ensureCursorVisible()
}

func formatCopiedNotice(lines int) string {
	if lines == 1 {
		return "copied 1 line to clipboard"
	}
	return fmt.Sprintf("copied %d lines to clipboard", lines)
}
