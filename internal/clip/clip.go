// Package clip provides access to the system clipboard text. A
// platform-specific probe selects the usual OS clipboard utility pair
// (wl-clipboard, xclip, xsel, pbcopy/pbpaste, the PowerShell cmdlets) and
// falls back to the built-in native backend, then to a no-op backend on
// headless hosts. The choice is made once at startup.
package clip

import (
	"context"
	"log/slog"
)

// Accessor reads and writes the local system clipboard.
type Accessor interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Get returns the current clipboard text. An empty string with a nil
	// error means the clipboard is empty.
	Get(ctx context.Context) (string, error)

	// Set replaces the clipboard text.
	Set(ctx context.Context, text string) error
}

// Backend selection modes for New.
const (
	ModeAuto    = "auto"
	ModeCommand = "command"
	ModeNative  = "native"
	ModeNone    = "none"
)

// New selects a clipboard backend. mode is one of auto, command, native,
// none; auto prefers the platform's command-line tools and falls back to
// the native library. Hosts with no usable clipboard get the no-op
// backend rather than an error, so a relay-only process still runs.
func New(mode string) Accessor {
	switch mode {
	case ModeNone:
		return Noop()
	case ModeNative:
		a, err := Native()
		if err != nil {
			slog.Warn("native clipboard unavailable, running headless", "err", err)
			return Noop()
		}
		return a
	case ModeCommand:
		if a := platformCommand(); a != nil {
			return a
		}
		slog.Warn("no clipboard utility found, running headless")
		return Noop()
	default:
		if a := platformCommand(); a != nil {
			return a
		}
		if a, err := Native(); err == nil {
			return a
		}
		slog.Warn("clipboard unavailable, running headless")
		return Noop()
	}
}
