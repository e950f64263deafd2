// Package ui implements the interactive pager: an append-only message log
// with a conjunctive filter stack, regex search, a width-keyed wrap cache
// and clipboard integration, driven as a Bubble Tea model.
package ui

import (
	"regexp"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/woodchipper/internal/classify"
	"github.com/example/woodchipper/internal/clip"
	"github.com/example/woodchipper/internal/message"
	"github.com/example/woodchipper/internal/render"
	"github.com/example/woodchipper/internal/style"
)

// Mode is the top-level input state.
type Mode int

const (
	// ModeBrowse navigates the log.
	ModeBrowse Mode = iota

	// ModeFiltering edits a new filter regex live.
	ModeFiltering

	// ModeSearching edits a search regex live.
	ModeSearching

	// ModeSearchActive retains search highlighting after the input closed.
	ModeSearchActive
)

// Event is one item delivered from the pipeline to the pager.
type Event struct {
	Message *classify.ClassifiedMessage
	EOF     bool
}

// entry is a log record plus its per-width render caches.
type entry struct {
	cm *classify.ClassifiedMessage

	// plain is the filter/search text: the plain rendering joined by
	// spaces. Computed once on append.
	plain string

	// layout is the wrap cache: display rows at layoutWidth. Recomputed
	// lazily after a resize.
	layout      []render.Row
	layoutWidth int
}

// entryBatchSize bounds how many pending events collapse into one frame.
const entryBatchSize = 256

// Options configures the pager.
type Options struct {
	Style       *style.Style
	Events      <-chan Event
	CopyFn      func(string) error // overridable for tests; defaults to clip.Copy
	KeyMap      *keyMap
	NoAltScreen bool
}

// Model is the root pager state. All of it is owned by the renderer
// goroutine; the input and pipeline communicate solely by message passing.
type Model struct {
	styles *style.Style
	keys   keyMap
	events <-chan Event
	copyFn func(string) error

	width  int
	height int
	ready  bool

	// entries is the authoritative append-only log.
	entries []*entry

	// filtered is the derived view: indexes into entries for which every
	// stacked filter matches.
	filtered []int

	// filters is the conjunctive stack of committed regexes.
	filters []*regexp.Regexp

	// preview restricts the view while a valid filter is being typed; nil
	// when inactive.
	preview []int

	// live is the regex compiled from the current input, nil when empty or
	// invalid.
	live        *regexp.Regexp
	liveInvalid bool

	// search is the committed search regex retained in SearchActive.
	search *regexp.Regexp

	mode  Mode
	input textinput.Model

	// cursor indexes the active view (see view); -1 means no selection. In
	// follow mode it sits on the last message of the view.
	cursor int
	follow bool

	// top/topRow anchor the viewport: first visible message (index into
	// the view) and first visible row within it.
	top    int
	topRow int

	eof      bool
	quitting bool
}

// New builds the pager model.
func New(opts Options) Model {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 256

	keys := defaultKeyMap()
	if opts.KeyMap != nil {
		keys = *opts.KeyMap
	}
	copyFn := opts.CopyFn
	if copyFn == nil {
		copyFn = clip.Copy
	}

	return Model{
		styles: opts.Style,
		keys:   keys,
		events: opts.Events,
		copyFn: copyFn,
		input:  input,
		cursor: -1,
		follow: true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return listen(m.events)
}

// entriesMsg is a drained batch of pipeline events.
type entriesMsg []Event

// listen waits for the next pipeline event, then drains whatever else is
// already pending so a burst of messages coalesces into a single frame.
func listen(ch <-chan Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		batch := entriesMsg{ev}
		for len(batch) < entryBatchSize {
			select {
			case next, more := <-ch:
				if !more {
					return batch
				}
				batch = append(batch, next)
			default:
				return batch
			}
		}
		return batch
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.input.Width = max(msg.Width-16, 8)
		// width changed: every cached layout is stale
		m.ensureCursorVisible()
		return m, nil

	case entriesMsg:
		for _, ev := range msg {
			if ev.EOF {
				m.eof = true
				continue
			}
			if ev.Message != nil {
				m.appendEntry(ev.Message)
			}
		}
		return m, listen(m.events)
	}

	return m, nil
}

// appendEntry adds a message to the authoritative log and incrementally
// extends the filtered view: only the new tail is tested, existing
// membership never changes.
func (m *Model) appendEntry(cm *classify.ClassifiedMessage) {
	e := &entry{cm: cm, plain: render.FilterText(cm)}
	m.entries = append(m.entries, e)
	idx := len(m.entries) - 1

	if !m.matchesFilters(e) {
		return
	}
	m.filtered = append(m.filtered, idx)
	if m.preview != nil && m.live != nil && m.live.MatchString(e.plain) {
		m.preview = append(m.preview, idx)
	}
	if m.follow {
		m.cursor = len(m.view()) - 1
		m.scrollToBottom()
	}
}

// matchesFilters applies the committed filter stack conjunctively.
func (m *Model) matchesFilters(e *entry) bool {
	for _, f := range m.filters {
		if !f.MatchString(e.plain) {
			return false
		}
	}
	return true
}

// recomputeFiltered rebuilds the filtered view from scratch against the
// full stack; used on commit and on pop (a pop cannot be applied
// incrementally).
func (m *Model) recomputeFiltered() {
	m.filtered = m.filtered[:0]
	for i, e := range m.entries {
		if m.matchesFilters(e) {
			m.filtered = append(m.filtered, i)
		}
	}
	m.cursor = -1
	m.follow = true
	m.scrollToBottom()
}

// view returns the active view: the filter preview while one is being
// typed, otherwise the committed filtered view.
func (m *Model) view() []int {
	if m.preview != nil {
		return m.preview
	}
	return m.filtered
}

// internalNotice surfaces a pager-generated notice in-band.
func (m *Model) internalNotice(level message.Level, text string) {
	m.appendEntry(classify.Internal(level, text))
}

// Quitting reports whether the user asked to exit.
func (m Model) Quitting() bool {
	return m.quitting
}

// Run starts the pager program over the given event stream and blocks
// until it exits.
func Run(opts Options) error {
	var teaOpts []tea.ProgramOption
	if !opts.NoAltScreen {
		teaOpts = append(teaOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(New(opts), teaOpts...)
	_, err := p.Run()
	return err
}
