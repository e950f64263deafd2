// Package config holds the immutable snapshot of user choices threaded
// through every component at startup, and loads the user regex parser set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/woodchipper/internal/parser"
	"github.com/example/woodchipper/internal/style"
)

// Renderer and reader ids accepted on the command line.
const (
	RendererAuto        = "auto"
	RendererInteractive = "interactive"
	RendererStyled      = "styled"
	RendererPlain       = "plain"
	RendererJSON        = "json"
	RendererRaw         = "raw"

	ReaderAuto       = "auto"
	ReaderStdin      = "stdin"
	ReaderStdinAlt   = "stdin-alt"
	ReaderFile       = "file"
	ReaderKubernetes = "kubernetes"
	ReaderNull       = "null"
)

// Config is immutable after startup and freely readable from any
// goroutine.
type Config struct {
	// Renderer is the resolved renderer id (never auto).
	Renderer string

	// Reader is the resolved reader id (never auto).
	Reader string

	// Path is the input file for the file reader.
	Path string

	// Selectors are the positional arguments: pod substring selectors, or a
	// single key=value label selector.
	Selectors []string

	// Namespace is the Kubernetes namespace to read.
	Namespace string

	// PollInterval bounds Kubernetes pod rediscovery.
	PollInterval time.Duration

	// FallbackWidth is used by the styled renderer when no tty width is
	// detectable.
	FallbackWidth int

	// StyleName is the raw style selector (dark, light, none, base16:PATH).
	StyleName string

	// Style is the resolved scheme.
	Style *style.Style

	// RegexRules are the compiled user regex parser entries.
	RegexRules []parser.RegexRule

	// DebugLog is an optional file path for out-of-band zap debug logging.
	DebugLog string
}

// regexEntry mirrors one element of the regex config file.
type regexEntry struct {
	Pattern         string `yaml:"pattern"`
	Datetime        string `yaml:"datetime"`
	DatetimePrepend string `yaml:"datetime_prepend"`
}

// LoadRegexes reads a regex parser config: a YAML sequence of entries with
// a pattern, a datetime format and an optional datetime_prepend. Patterns
// are compiled here so a bad file fails at startup, not per-line.
func LoadRegexes(path string) ([]parser.RegexRule, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read regex file: %w", err)
	}

	var entries []regexEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse regex file %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("regex file %s contains no entries", path)
	}

	rules := make([]parser.RegexRule, 0, len(entries))
	for i, e := range entries {
		if e.Pattern == "" {
			return nil, fmt.Errorf("regex file %s entry %d: pattern is required", path, i)
		}
		re, err := regexp.Compile(e.Pattern)
		if err != nil {
			return nil, fmt.Errorf("regex file %s entry %d: %w", path, i, err)
		}
		rules = append(rules, parser.RegexRule{
			Pattern:         re,
			Datetime:        e.Datetime,
			DatetimePrepend: e.DatetimePrepend,
		})
	}
	return rules, nil
}

// ExpandHome resolves a leading ~ against the user's home directory.
func ExpandHome(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
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
