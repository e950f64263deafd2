package style

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/example/woodchipper/internal/classify"
	"github.com/example/woodchipper/internal/message"
)

// Base16 is a standard base16 scheme file: sixteen hex colors.
type Base16 struct {
	Base00 string `yaml:"base00"`
	Base01 string `yaml:"base01"`
	Base02 string `yaml:"base02"`
	Base03 string `yaml:"base03"`
	Base04 string `yaml:"base04"`
	Base05 string `yaml:"base05"`
	Base06 string `yaml:"base06"`
	Base07 string `yaml:"base07"`
	Base08 string `yaml:"base08"`
	Base09 string `yaml:"base09"`
	Base0A string `yaml:"base0A"`
	Base0B string `yaml:"base0B"`
	Base0C string `yaml:"base0C"`
	Base0D string `yaml:"base0D"`
	Base0E string `yaml:"base0E"`
	Base0F string `yaml:"base0F"`
}

func (b *Base16) bases() []string {
	return []string{
		b.Base00, b.Base01, b.Base02, b.Base03,
		b.Base04, b.Base05, b.Base06, b.Base07,
		b.Base08, b.Base09, b.Base0A, b.Base0B,
		b.Base0C, b.Base0D, b.Base0E, b.Base0F,
	}
}

// normalizeHex validates a 6-digit hex color and returns it with a leading
// '#'. Missing bases degrade to the terminal default ("").
func normalizeHex(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return "", fmt.Errorf("color %q is not a 6-digit hex value", s)
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		ok := c >= '0' && c <= '9' ||
			c >= 'a' && c <= 'f' ||
			c >= 'A' && c <= 'F'
		if !ok {
			return "", fmt.Errorf("color %q is not a 6-digit hex value", s)
		}
	}
	return "#" + h, nil
}

// color returns a lipgloss color for a normalized base, or lipgloss.NoColor
// for the terminal default.
func color(hex string) lipgloss.TerminalColor {
	if hex == "" {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// LoadBase16 reads a base16 YAML scheme file and builds a Style from it.
func LoadBase16(path string) (*Style, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read scheme file: %w", err)
	}

	var b16 Base16
	if err := yaml.Unmarshal(data, &b16); err != nil {
		return nil, fmt.Errorf("parse scheme file %s: %w", path, err)
	}

	bases := b16.bases()
	for i, raw := range bases {
		normalized, err := normalizeHex(raw)
		if err != nil {
			return nil, fmt.Errorf("scheme file %s base%02X: %w", path, i, err)
		}
		bases[i] = normalized
	}

	return fromBase16(bases), nil
}

func base16Kinds(base lipgloss.Style, bases []string) map[classify.Kind]lipgloss.Style {
	return map[classify.Kind]lipgloss.Style{
		"timestamp":              base.Foreground(color(bases[0x3])),
		classify.KindMetadataKey: base.Foreground(color(bases[0xC])),
		"context":                base.Foreground(color(bases[0x3])),

		classify.LevelKind(message.LevelTrace):   base.Foreground(color(bases[0x3])),
		classify.LevelKind(message.LevelDebug):   base.Foreground(color(bases[0xC])),
		classify.LevelKind(message.LevelInfo):    base.Foreground(color(bases[0xB])),
		classify.LevelKind(message.LevelWarn):    base.Foreground(color(bases[0xA])),
		classify.LevelKind(message.LevelError):   base.Foreground(color(bases[0x9])),
		classify.LevelKind(message.LevelFatal):   base.Foreground(color(bases[0x8])),
		classify.LevelKind(message.LevelUnknown): base,
	}
}

func fromBase16(bases []string) *Style {
	normalBase := lipgloss.NewStyle().Foreground(color(bases[0x5]))
	selectedBase := lipgloss.NewStyle().
		Foreground(color(bases[0x5])).
		Background(color(bases[0x2]))
	highlightedBase := lipgloss.NewStyle().
		Foreground(color(bases[0x6])).
		Bold(true)

	return &Style{
		Normal: Profile{
			base:  normalBase,
			kinds: base16Kinds(normalBase, bases),
		},
		Selected: Profile{
			base:   selectedBase,
			opaque: true,
			kinds:  base16Kinds(selectedBase, bases),
		},
		Highlighted: Profile{
			base:  highlightedBase,
			kinds: base16Kinds(highlightedBase, bases),
		},
	}
}

// expandHome resolves a leading ~ against the user's home directory.
func expandHome(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return trimmed, nil
}
