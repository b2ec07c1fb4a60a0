// Package logging configures slog output for clipshare binaries.
//
// Interactive runs get human-oriented colored lines via tinter; services
// and pipes get JSON. FormatAuto picks between the two based on whether
// stderr is a terminal.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a string to a Format, returning FormatAuto for unknown values.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "text", "tint", "human":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// ParseLevel converts a string to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// NewHandler builds the slog handler for format at level, writing to w.
// Millisecond timestamps keep poll-interval timing readable in text mode;
// text forced onto a pipe comes out uncolored.
func NewHandler(w io.Writer, format Format, level slog.Level) slog.Handler {
	text := format == FormatText
	if format == FormatAuto {
		text = IsTTY(w)
	}
	if !text {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tinter.NewHandler(w, &tinter.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !IsTTY(w),
	})
}

// Setup installs the global slog logger. Call once after flag/viper parsing.
func Setup(format Format, level slog.Level) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, format, level)))
}
