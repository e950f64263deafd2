// Package prefs persists small user preferences between runs. Preferences
// sit below environment variables and flags in precedence.
package prefs

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs are the persisted user preferences.
type Prefs struct {
	// Style is the preferred style selector (dark, light, none,
	// base16:PATH).
	Style string `toml:"style"`

	// Renderer is the preferred renderer when stdout is a tty.
	Renderer string `toml:"renderer"`
}

// DefaultPath returns the standard prefs location.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "woodchipper", "prefs.toml")
}

// Load reads prefs from path, falling back to zero values when the file is
// missing or unreadable. Prefs are best effort; they never fail startup.
func Load(path string) Prefs {
	if path == "" {
		path = DefaultPath()
	}
	var p Prefs
	if path == "" {
		return p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return Prefs{}
	}
	return p
}

// Save writes prefs to path, creating the directory as needed.
func Save(path string, p Prefs) error {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return nil
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
