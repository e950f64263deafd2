package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keyboard bindings for the pager.
type keyMap struct {
	// Global
	Quit   key.Binding
	Escape key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Modes
	Filter key.Binding
	Search key.Binding

	// Browse actions
	PopFilter  key.Binding
	CopyCursor key.Binding
	CopyScreen key.Binding

	// Search navigation
	NextMatch key.Binding
	PrevMatch key.Binding

	// Input
	Confirm key.Binding
}

// defaultKeyMap returns the default key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home", "Go to first message"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end", "Follow the tail"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "Page down"),
		),

		Filter: key.NewBinding(
			key.WithKeys("f", "|"),
			key.WithHelp("f", "Add filter"),
		),
		Search: key.NewBinding(
			key.WithKeys("/", "ctrl+f"),
			key.WithHelp("/", "Find"),
		),

		PopFilter: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Pop filter"),
		),
		CopyCursor: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Copy message"),
		),
		CopyScreen: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "Copy screen"),
		),

		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("ctrl+p", "N"),
			key.WithHelp("ctrl+p", "Previous match"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}
