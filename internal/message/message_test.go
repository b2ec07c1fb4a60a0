package message

import (
	"errors"
	"strings"
	"testing"
)

func TestClipboardRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain", "hello world"},
		{"embedded newlines", "line one\nline two\r\nline three"},
		{"unicode", "héllo — ☃ 日本語"},
		{"json-hostile", `{"type":"CLIPBOARD"}` + "\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := NewClipboard("hostA", tt.text).Encode()
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if strings.ContainsRune(string(raw), '\n') {
				t.Fatalf("encoded message contains a raw newline: %q", raw)
			}

			m, err := Decode(raw)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if m.Type != TypeClipboard {
				t.Errorf("Type = %q, want %q", m.Type, TypeClipboard)
			}
			if m.Source != "hostA" {
				t.Errorf("Source = %q, want %q", m.Source, "hostA")
			}
			got, err := m.Text()
			if err != nil {
				t.Fatalf("Text: %v", err)
			}
			if got != tt.text {
				t.Errorf("Text = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "definitely not json"},
		{"truncated", `{"type":"CLIPBOARD","content":`},
		{"missing type", `{"content":"aGk="}`},
		{"wrong shape", `[1,2,3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode(%q) err = %v, want ErrMalformed", tt.raw, err)
			}
		})
	}
}

func TestTextBadBase64(t *testing.T) {
	m := &Message{Type: TypeClipboard, Content: "not base64!!!"}
	if _, err := m.Text(); !errors.Is(err, ErrMalformed) {
		t.Errorf("Text err = %v, want ErrMalformed", err)
	}
}
