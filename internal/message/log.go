package message

import (
	"context"
	"log/slog"
)

// LogContent logs a clipboard event at INFO (source, size) and DEBUG
// (text preview up to 120 chars). Content never reaches INFO output.
func LogContent(event, source, content string) {
	slog.Info(event, "source", source, "bytes", len(content))

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	preview := content
	if runes := []rune(preview); len(runes) > 120 {
		preview = string(runes[:120]) + "…"
	}
	slog.Debug("clipboard content", "preview", preview)
}
