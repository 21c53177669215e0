// Package log builds the slog logger used for trace diagnostics.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// Log formats accepted by Options.Format
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures the logger.
type Options struct {
	// Verbose enables debug output: every stop event and mirrored write
	Verbose bool
	// Format is one of auto, text or json. Auto picks text for terminals
	// and json otherwise.
	Format string
	// Stderr is the writer for diagnostics (defaults to os.Stderr)
	Stderr io.Writer
}

// New creates a logger from opts
func New(opts Options) (*slog.Logger, error) {
	w := opts.Stderr
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}

	switch resolveFormat(opts.Format, w) {
	case FormatText:
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	}
	return nil, fmt.Errorf("log: unknown format %q", opts.Format)
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// ValidFormat reports whether f is an accepted format name
func ValidFormat(f string) bool {
	switch f {
	case "", FormatAuto, FormatText, FormatJSON:
		return true
	}
	return false
}

func resolveFormat(f string, w io.Writer) string {
	if f != "" && f != FormatAuto {
		return f
	}
	if isTerminal(w) {
		return FormatText
	}
	return FormatJSON
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
