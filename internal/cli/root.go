// Package cli provides the command-line interface for woodchipper.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/example/woodchipper/internal/app"
	"github.com/example/woodchipper/internal/config"
	"github.com/example/woodchipper/internal/prefs"
	"github.com/example/woodchipper/internal/reader"
	"github.com/example/woodchipper/internal/style"
)

// errRuntime wraps pipeline failures so Execute can tell them apart from
// configuration errors; bad flags and files map to exit code 2,
// everything that failed while running maps to 1.
type errRuntime struct{ err error }

func (e errRuntime) Error() string { return e.err.Error() }
func (e errRuntime) Unwrap() error { return e.err }

// Execute runs the root command and returns the process exit code:
// 0 success, 1 unrecoverable reader or terminal failure, 2 configuration
// error.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "woodchipper: %v\n", err)
		var runErr errRuntime
		if errors.As(err, &runErr) {
			return 1
		}
		return 2
	}
	return 0
}

// flags holds the raw flag values before resolution.
type flags struct {
	renderer          string
	preferredRenderer string
	readerName        string
	regexes           string
	styleName         string
	namespace         string
	path              string
	pollInterval      int
	fallbackWidth     int
	debugLog          string
	prefsPath         string
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "woodchipper [selectors...]",
		Short: "A general-purpose log viewer",
		Long: `Woodchipper ingests heterogeneous log streams, normalizes them, and
presents them through an interactive pager or streaming renderers.

Positional arguments are Kubernetes pod substring selectors; a single
key=value argument switches to a label selector. A single argument naming
an existing file selects the file reader instead.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd, &f, args)
			if err != nil {
				return err
			}
			if err := app.Run(cfg); err != nil {
				return errRuntime{err}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.renderer, "renderer", "r", config.RendererAuto,
		"renderer to use: auto, interactive, styled, plain, json, raw")
	cmd.Flags().StringVar(&f.preferredRenderer, "preferred-renderer", "",
		"renderer picked by auto when stdout is a tty (default interactive)")
	cmd.Flags().StringVar(&f.readerName, "reader", config.ReaderAuto,
		"reader to use: auto, stdin, stdin-alt, file, kubernetes, null")
	cmd.Flags().StringVar(&f.regexes, "regexes", "",
		"path to a custom regex parser config file")
	cmd.Flags().StringVarP(&f.styleName, "style", "s", "",
		"style to use: dark, light, none, base16:PATH")
	cmd.Flags().StringVarP(&f.namespace, "namespace", "n", "",
		"Kubernetes namespace to read")
	cmd.Flags().StringVar(&f.path, "path", "",
		"input file for the file reader")
	cmd.Flags().IntVar(&f.pollInterval, "poll-interval", 3,
		"Kubernetes pod rediscovery interval in seconds")
	cmd.Flags().IntVarP(&f.fallbackWidth, "fallback-width", "w", 120,
		"styled renderer width when no tty is detectable")
	cmd.Flags().StringVar(&f.debugLog, "debug-log", "",
		"write debug diagnostics to this file")
	cmd.Flags().StringVar(&f.prefsPath, "prefs", "",
		"override prefs file path")

	return cmd
}

// envOverride applies an environment variable unless the flag was set
// explicitly; flags win over environment.
func envOverride(cmd *cobra.Command, flagName, envName string, value *string) {
	if cmd.Flags().Changed(flagName) {
		return
	}
	if env := os.Getenv(envName); env != "" {
		*value = env
	}
}

func validRenderer(name string) bool {
	switch name {
	case config.RendererInteractive, config.RendererStyled, config.RendererPlain,
		config.RendererJSON, config.RendererRaw:
		return true
	}
	return false
}

func validReader(name string) bool {
	switch name {
	case config.ReaderStdin, config.ReaderStdinAlt, config.ReaderFile,
		config.ReaderKubernetes, config.ReaderNull:
		return true
	}
	return false
}

// resolve turns flags, environment, prefs and positional arguments into
// the immutable config snapshot.
func resolve(cmd *cobra.Command, f *flags, args []string) (*config.Config, error) {
	envOverride(cmd, "renderer", "WD_RENDERER", &f.renderer)
	envOverride(cmd, "preferred-renderer", "WD_PREFERRED_RENDERER", &f.preferredRenderer)
	envOverride(cmd, "reader", "WD_READER", &f.readerName)
	envOverride(cmd, "style", "WD_STYLE", &f.styleName)
	envOverride(cmd, "regexes", "WD_REGEXES", &f.regexes)
	envOverride(cmd, "namespace", "WD_NAMESPACE", &f.namespace)

	userPrefs := prefs.Load(f.prefsPath)
	if f.styleName == "" && userPrefs.Style != "" {
		f.styleName = userPrefs.Style
	}
	if f.preferredRenderer == "" && userPrefs.Renderer != "" {
		f.preferredRenderer = userPrefs.Renderer
	}
	if f.preferredRenderer == "" {
		f.preferredRenderer = config.RendererInteractive
	}

	resolvedStyle, err := style.Resolve(f.styleName)
	if err != nil {
		return nil, err
	}

	cfg := &config.Config{
		Selectors:     args,
		Namespace:     f.namespace,
		Path:          f.path,
		PollInterval:  time.Duration(f.pollInterval) * time.Second,
		FallbackWidth: f.fallbackWidth,
		StyleName:     f.styleName,
		Style:         resolvedStyle,
		DebugLog:      f.debugLog,
	}

	if f.regexes != "" {
		rules, err := config.LoadRegexes(f.regexes)
		if err != nil {
			return nil, err
		}
		cfg.RegexRules = rules
	}

	// a single positional argument naming an existing file selects the
	// file reader
	if f.readerName == config.ReaderAuto && len(args) == 1 && f.path == "" {
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			f.readerName = config.ReaderFile
			cfg.Path = args[0]
			cfg.Selectors = nil
		}
	}

	cfg.Renderer = resolveRenderer(f)
	if !validRenderer(cfg.Renderer) {
		return nil, fmt.Errorf("unknown renderer %q", cfg.Renderer)
	}

	cfg.Reader = resolveReader(f, cfg)
	if !validReader(cfg.Reader) {
		return nil, fmt.Errorf("unknown reader %q", cfg.Reader)
	}
	if cfg.Reader == config.ReaderFile && cfg.Path == "" {
		return nil, errors.New("the file reader requires --path or a file argument")
	}

	// the interactive renderer needs input on a separate descriptor from
	// the log pipe; without the stdin device, fall back to plain output
	if cfg.Renderer == config.RendererInteractive &&
		cfg.Reader == config.ReaderStdin && !reader.StdinAltAvailable() {
		cfg.Renderer = config.RendererPlain
	}

	return cfg, nil
}

// resolveRenderer implements the auto rule: the preferred renderer when
// stdout is a tty, plain otherwise.
func resolveRenderer(f *flags) string {
	if f.renderer != config.RendererAuto {
		return f.renderer
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		if f.preferredRenderer == config.RendererAuto {
			return config.RendererInteractive
		}
		return f.preferredRenderer
	}
	return config.RendererPlain
}

// resolveReader implements the auto rule: piped stdin wins, then the
// Kubernetes selectors, then null.
func resolveReader(f *flags, cfg *config.Config) string {
	if f.readerName != config.ReaderAuto {
		return f.readerName
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		if cfg.Renderer == config.RendererInteractive && reader.StdinAltAvailable() {
			return config.ReaderStdinAlt
		}
		return config.ReaderStdin
	}

	if cfg.Namespace != "" || len(cfg.Selectors) > 0 {
		return config.ReaderKubernetes
	}

	return config.ReaderNull
}
