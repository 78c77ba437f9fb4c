package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatTint = "tint"
)

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// NewHandler builds the slog handler for the given format. JSON and text
// write to w; tint always writes to stderr through a colour-aware writer and
// only colours when stderr is a terminal.
func NewHandler(format string, level slog.Leveler, w io.Writer) (slog.Handler, error) {
	switch format {
	case "", FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil
	case FormatText:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}), nil
	case FormatTint:
		return tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		}), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// New is a convenience wrapper returning a ready Logger.
func New(format, level string, w io.Writer) (*SlogLogger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	h, err := NewHandler(format, l, w)
	if err != nil {
		return nil, err
	}
	return NewSlogLogger(slog.New(h)), nil
}
