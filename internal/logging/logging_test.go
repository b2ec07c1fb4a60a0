package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"text", FormatText},
		{"tint", FormatText},
		{"human", FormatText},
		{"TEXT", FormatText},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"auto", FormatAuto},
		{"", FormatAuto},
		{"bogus", FormatAuto},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsTTYNonFile(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("IsTTY(bytes.Buffer) = true, want false")
	}
}

func TestNewHandlerFormats(t *testing.T) {
	log := func(format Format) string {
		var buf bytes.Buffer
		logger := slog.New(NewHandler(&buf, format, slog.LevelInfo))
		logger.Info("clipboard synced", "bytes", 42)
		return buf.String()
	}

	var record map[string]any
	if out := log(FormatJSON); json.Unmarshal([]byte(out), &record) != nil {
		t.Errorf("json format produced non-JSON output: %q", out)
	}

	// A buffer is not a TTY, so auto must resolve to JSON.
	record = nil
	if out := log(FormatAuto); json.Unmarshal([]byte(out), &record) != nil {
		t.Errorf("auto format on a pipe produced non-JSON output: %q", out)
	}

	out := log(FormatText)
	if strings.HasPrefix(out, "{") {
		t.Errorf("text format produced JSON: %q", out)
	}
	if !strings.Contains(out, "clipboard synced") {
		t.Errorf("text output missing message: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("text output to a pipe is colored: %q", out)
	}
}

func TestNewHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, FormatJSON, slog.LevelWarn))
	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info record emitted at warn level: %q", buf.String())
	}
	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn record suppressed at warn level")
	}
}
