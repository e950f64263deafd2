// Package style resolves a color scheme into per-chunk terminal styles.
// Schemes are either built-in palettes (dark, light, none) or a base16
// scheme file.
package style

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/example/woodchipper/internal/classify"
	"github.com/example/woodchipper/internal/message"
)

// Profile maps chunk kinds to styles for one display context.
type Profile struct {
	base   lipgloss.Style
	opaque bool
	kinds  map[classify.Kind]lipgloss.Style
}

// Base returns the fallback style for unmapped kinds and filler cells.
func (p *Profile) Base() lipgloss.Style {
	return p.base
}

// Opaque reports whether spacer cells must be painted with the base style
// (e.g. the selected row's background).
func (p *Profile) Opaque() bool {
	return p.opaque
}

// For resolves the style for a kind. A kind without a direct mapping falls
// back to its parent prefix, then to the base style.
func (p *Profile) For(kind classify.Kind) lipgloss.Style {
	for k := kind; k != ""; k = k.Parent() {
		if s, ok := p.kinds[k]; ok {
			return s
		}
	}
	return p.base
}

// Style is the resolved scheme: one profile per display context.
type Style struct {
	// Normal styles ordinary log rows.
	Normal Profile

	// Selected styles the cursor row and the status/input bar.
	Selected Profile

	// Highlighted styles rows matching the live or retained search regex.
	Highlighted Profile
}

// ErrorText returns the style used for invalid input highlighting.
func (s *Style) ErrorText() lipgloss.Style {
	return s.Selected.For(classify.LevelKind(message.LevelError))
}

// Resolve builds a Style from a scheme name: `dark`, `light`, `none`, or
// `base16:PATH`.
func Resolve(name string) (*Style, error) {
	if rest, ok := strings.CutPrefix(name, "base16:"); ok {
		return LoadBase16(rest)
	}
	switch name {
	case "", "dark":
		return darkStyle(), nil
	case "light":
		return lightStyle(), nil
	case "none":
		return noneStyle(), nil
	}
	return nil, fmt.Errorf("unsupported style %q", name)
}

func levelKinds(base lipgloss.Style, debug, info, warn, errc, fatal lipgloss.Style) map[classify.Kind]lipgloss.Style {
	return map[classify.Kind]lipgloss.Style{
		classify.LevelKind(message.LevelTrace):   base.Faint(true),
		classify.LevelKind(message.LevelDebug):   debug,
		classify.LevelKind(message.LevelInfo):    info,
		classify.LevelKind(message.LevelWarn):    warn,
		classify.LevelKind(message.LevelError):   errc,
		classify.LevelKind(message.LevelFatal):   fatal,
		classify.LevelKind(message.LevelUnknown): base,
	}
}

func darkStyle() *Style {
	base := lipgloss.NewStyle()

	normal := Profile{
		base: base,
		kinds: map[classify.Kind]lipgloss.Style{
			"timestamp":              base.Foreground(lipgloss.Color("7")).Faint(true),
			classify.KindMetadataKey: base.Foreground(lipgloss.Color("6")).Faint(true),
			"context":                base.Foreground(lipgloss.Color("8")).Bold(true),
		},
	}
	for k, v := range levelKinds(base,
		base.Foreground(lipgloss.Color("6")),
		base.Foreground(lipgloss.Color("2")),
		base.Foreground(lipgloss.Color("3")),
		base.Foreground(lipgloss.Color("1")),
		base.Foreground(lipgloss.Color("1")).Bold(true),
	) {
		normal.kinds[k] = v
	}

	selBase := lipgloss.NewStyle().
		Background(lipgloss.Color("7")).
		Foreground(lipgloss.Color("0"))
	selected := Profile{
		base:   selBase,
		opaque: true,
		kinds: map[classify.Kind]lipgloss.Style{
			classify.KindMetadataKey: selBase.Foreground(lipgloss.Color("4")).Faint(true),
		},
	}
	for k, v := range levelKinds(selBase,
		selBase.Foreground(lipgloss.Color("4")),
		selBase.Foreground(lipgloss.Color("2")).Faint(true),
		selBase.Foreground(lipgloss.Color("5")).Faint(true),
		selBase.Foreground(lipgloss.Color("1")).Faint(true),
		selBase.Foreground(lipgloss.Color("1")).Bold(true),
	) {
		selected.kinds[k] = v
	}

	hiBase := lipgloss.NewStyle().Bold(true)
	highlighted := Profile{
		base: hiBase,
		kinds: map[classify.Kind]lipgloss.Style{
			"timestamp":              hiBase.Foreground(lipgloss.Color("7")),
			classify.KindMetadataKey: hiBase.Foreground(lipgloss.Color("6")),
			"context":                hiBase.Foreground(lipgloss.Color("8")),
		},
	}
	for k, v := range levelKinds(hiBase,
		hiBase.Foreground(lipgloss.Color("6")),
		hiBase.Foreground(lipgloss.Color("2")),
		hiBase.Foreground(lipgloss.Color("3")),
		hiBase.Foreground(lipgloss.Color("1")),
		hiBase.Foreground(lipgloss.Color("1")),
	) {
		highlighted.kinds[k] = v
	}

	return &Style{Normal: normal, Selected: selected, Highlighted: highlighted}
}

func lightStyle() *Style {
	base := lipgloss.NewStyle()

	normal := Profile{
		base: base,
		kinds: map[classify.Kind]lipgloss.Style{
			"timestamp":              base.Foreground(lipgloss.Color("8")),
			classify.KindMetadataKey: base.Foreground(lipgloss.Color("4")),
			"context":                base.Foreground(lipgloss.Color("8")),
		},
	}
	for k, v := range levelKinds(base,
		base.Foreground(lipgloss.Color("4")),
		base.Foreground(lipgloss.Color("2")),
		base.Foreground(lipgloss.Color("3")),
		base.Foreground(lipgloss.Color("1")),
		base.Foreground(lipgloss.Color("1")).Bold(true),
	) {
		normal.kinds[k] = v
	}

	selBase := lipgloss.NewStyle().
		Background(lipgloss.Color("0")).
		Foreground(lipgloss.Color("7"))
	selected := Profile{base: selBase, opaque: true, kinds: map[classify.Kind]lipgloss.Style{}}
	for k, v := range levelKinds(selBase,
		selBase.Foreground(lipgloss.Color("6")),
		selBase.Foreground(lipgloss.Color("2")),
		selBase.Foreground(lipgloss.Color("3")),
		selBase.Foreground(lipgloss.Color("1")),
		selBase.Foreground(lipgloss.Color("1")).Bold(true),
	) {
		selected.kinds[k] = v
	}

	hiBase := lipgloss.NewStyle().Bold(true)
	highlighted := Profile{base: hiBase, kinds: map[classify.Kind]lipgloss.Style{}}

	return &Style{Normal: normal, Selected: selected, Highlighted: highlighted}
}

// noneStyle emits no terminal attributes at all; selection still needs to
// be visible, so the selected profile inverts.
func noneStyle() *Style {
	plain := Profile{base: lipgloss.NewStyle(), kinds: map[classify.Kind]lipgloss.Style{}}
	selected := Profile{
		base:   lipgloss.NewStyle().Reverse(true),
		opaque: true,
		kinds:  map[classify.Kind]lipgloss.Style{},
	}
	return &Style{Normal: plain, Selected: selected, Highlighted: plain}
}
