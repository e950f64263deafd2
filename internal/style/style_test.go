package style

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/woodchipper/internal/classify"
	"github.com/example/woodchipper/internal/message"
)

func TestResolveBuiltins(t *testing.T) {
	for _, name := range []string{"", "dark", "light", "none"} {
		t.Run(name, func(t *testing.T) {
			if _, err := Resolve(name); err != nil {
				t.Fatalf("Resolve(%q): %v", name, err)
			}
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	if _, err := Resolve("solarized"); err == nil {
		t.Fatal("Resolve should reject unknown scheme names")
	}
}

func TestKindPrefixFallback(t *testing.T) {
	st, err := Resolve("dark")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// timestamp-date has no direct mapping; it falls back to `timestamp`
	dateStyle := st.Normal.For(classify.KindTimestampDate)
	parentStyle := st.Normal.For(classify.Kind("timestamp"))
	if dateStyle.GetForeground() != parentStyle.GetForeground() {
		t.Fatal("timestamp-date should fall back to the timestamp mapping")
	}

	// a kind with no mapping anywhere falls back to base
	unknown := st.Normal.For(classify.Kind("no-such-kind"))
	if unknown.GetForeground() != st.Normal.Base().GetForeground() {
		t.Fatal("unmapped kind should fall back to base")
	}
}

const schemeYAML = `scheme: "test"
base00: "181818"
base01: "282828"
base02: "383838"
base03: "585858"
base04: "b8b8b8"
base05: "d8d8d8"
base06: "e8e8e8"
base07: "f8f8f8"
base08: "ab4642"
base09: "dc9656"
base0A: "f7ca88"
base0B: "a1b56c"
base0C: "86c1b9"
base0D: "7cafc2"
base0E: "ba8baf"
base0F: "a16946"
`

func writeScheme(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scheme.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write scheme: %v", err)
	}
	return path
}

func TestLoadBase16(t *testing.T) {
	path := writeScheme(t, schemeYAML)
	st, err := LoadBase16(path)
	if err != nil {
		t.Fatalf("LoadBase16: %v", err)
	}

	info := st.Normal.For(classify.LevelKind(message.LevelInfo))
	warn := st.Normal.For(classify.LevelKind(message.LevelWarn))
	if info.GetForeground() == warn.GetForeground() {
		t.Fatal("info and warn should map to different base16 colors")
	}
	if !st.Selected.Opaque() {
		t.Fatal("selected profile must be opaque")
	}
}

func TestResolveBase16Selector(t *testing.T) {
	path := writeScheme(t, schemeYAML)
	if _, err := Resolve("base16:" + path); err != nil {
		t.Fatalf("Resolve(base16:...): %v", err)
	}
}

func TestLoadBase16BadHex(t *testing.T) {
	path := writeScheme(t, "base00: \"zzz\"\n")
	if _, err := LoadBase16(path); err == nil {
		t.Fatal("LoadBase16 should reject malformed hex colors")
	}
}

func TestLoadBase16MissingFile(t *testing.T) {
	if _, err := LoadBase16(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadBase16 should fail for a missing file")
	}
}

func TestLoadBase16MissingBasesDegrade(t *testing.T) {
	// missing bases degrade to the terminal default rather than failing
	path := writeScheme(t, "base05: \"d8d8d8\"\nbase08: \"#ab4642\"\n")
	if _, err := LoadBase16(path); err != nil {
		t.Fatalf("LoadBase16 with partial scheme: %v", err)
	}
}
