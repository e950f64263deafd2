package ui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/woodchipper/internal/message"
	"github.com/example/woodchipper/internal/render"
)

// handleKey dispatches on the current mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeFiltering:
		return m.handleFilteringKey(msg)
	case ModeSearching:
		return m.handleSearchingKey(msg)
	}
	return m.handleBrowseKey(msg)
}

// handleBrowseKey covers Browse and SearchActive.
func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		if m.mode == ModeSearchActive {
			m.search = nil
			m.input.SetValue("")
			m.mode = ModeBrowse
			return m, nil
		}
		if !m.follow {
			m.clearSelection()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Top):
		m.cursorToTop()
	case key.Matches(msg, m.keys.Bottom):
		m.clearSelection()
	case key.Matches(msg, m.keys.PageUp):
		m.movePage(-1)
	case key.Matches(msg, m.keys.PageDown):
		m.movePage(1)

	case key.Matches(msg, m.keys.Filter):
		m.mode = ModeFiltering
		m.openInput()
	case key.Matches(msg, m.keys.Search):
		m.mode = ModeSearching
		m.openInput()

	case key.Matches(msg, m.keys.PopFilter):
		if len(m.filters) == 0 {
			m.internalNotice(message.LevelWarn, "no filters to remove")
		} else {
			m.filters = m.filters[:len(m.filters)-1]
			m.recomputeFiltered()
		}

	case key.Matches(msg, m.keys.CopyCursor):
		m.copyCursor()
	case key.Matches(msg, m.keys.CopyScreen):
		m.copyScreen()

	case key.Matches(msg, m.keys.NextMatch):
		if m.mode == ModeSearchActive {
			m.jumpMatch(m.search, 1, false)
		}
	case key.Matches(msg, m.keys.PrevMatch):
		if m.mode == ModeSearchActive {
			m.jumpMatch(m.search, -1, false)
		}
	}

	return m, nil
}

// openInput prepares the shared text input for a new filter or search.
func (m *Model) openInput() {
	m.input.SetValue("")
	m.input.Focus()
	m.live = nil
	m.liveInvalid = false
	m.preview = nil
}

// closeInput leaves the editing mode, discarding live state.
func (m *Model) closeInput() {
	m.input.Blur()
	m.live = nil
	m.liveInvalid = false
	m.preview = nil
}

// recompileLive recompiles the input regex on every keystroke. Invalid
// input disables matching and flags the input line for error styling.
func (m *Model) recompileLive() {
	value := m.input.Value()
	m.liveInvalid = false
	m.live = nil
	if value == "" {
		if m.mode == ModeFiltering {
			m.preview = nil
		}
		return
	}
	re, err := regexp.Compile(value)
	if err != nil {
		m.liveInvalid = true
		if m.mode == ModeFiltering {
			m.preview = nil
		}
		return
	}
	m.live = re

	if m.mode == ModeFiltering {
		// restrict the current message set to matches, without committing
		preview := make([]int, 0, len(m.filtered))
		for _, idx := range m.filtered {
			if re.MatchString(m.entries[idx].plain) {
				preview = append(preview, idx)
			}
		}
		m.preview = preview
		m.cursor = -1
		m.follow = true
		m.scrollToBottom()
	}
}

func (m Model) handleFilteringKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeInput()
		m.mode = ModeBrowse
		m.recomputeView()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		if m.input.Value() == "" {
			m.closeInput()
			m.mode = ModeBrowse
			return m, nil
		}
		if m.live == nil {
			// invalid regex cannot be committed
			return m, nil
		}
		m.filters = append(m.filters, m.live)
		m.closeInput()
		m.input.SetValue("")
		m.mode = ModeBrowse
		m.recomputeFiltered()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.recompileLive()
	return m, cmd
}

func (m Model) handleSearchingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		if m.live != nil {
			m.search = m.live
			m.mode = ModeSearchActive
		} else {
			m.input.SetValue("")
			m.mode = ModeBrowse
		}
		m.input.Blur()
		m.live = nil
		m.liveInvalid = false
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		m.jumpMatch(m.live, 1, false)
		return m, nil

	case key.Matches(msg, m.keys.PrevMatch):
		m.jumpMatch(m.live, -1, false)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	before := m.input.Value()
	m.recompileLive()
	if m.live != nil && before != "" {
		// jump to the nearest forward match, staying put if the cursor
		// already matches
		m.jumpMatch(m.live, 1, true)
	}
	return m, cmd
}

// recomputeView resets preview state after a discarded filter edit.
func (m *Model) recomputeView() {
	m.preview = nil
	m.ensureCursorVisible()
}

// copyCursor renders the cursor message through the plain renderer and
// hands it to the clipboard.
func (m *Model) copyCursor() {
	view := m.view()
	if len(view) == 0 || m.cursor < 0 || m.cursor >= len(view) {
		m.internalNotice(message.LevelWarn, "no message is selected")
		return
	}
	text := strings.Join(render.PlainLines(m.entries[view[m.cursor]].cm), "\n")
	if err := m.copyFn(text); err != nil {
		m.internalNotice(message.LevelError, "error writing to clipboard: "+err.Error())
		return
	}
	m.internalNotice(message.LevelInfo, "copied message to clipboard")
}

// copyScreen copies the plain rendering of every currently visible
// message.
func (m *Model) copyScreen() {
	first, last := m.visibleRange()
	view := m.view()
	if len(view) == 0 || first > last {
		m.internalNotice(message.LevelWarn, "nothing to copy")
		return
	}
	var b strings.Builder
	lines := 0
	for i := first; i <= last && i < len(view); i++ {
		for _, line := range render.PlainLines(m.entries[view[i]].cm) {
			b.WriteString(line)
			b.WriteByte('\n')
			lines++
		}
	}
	if err := m.copyFn(b.String()); err != nil {
		m.internalNotice(message.LevelError, "error writing to clipboard: "+err.Error())
		return
	}
	m.internalNotice(message.LevelInfo, formatCopiedNotice(lines))
}
