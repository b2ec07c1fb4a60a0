package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/emptypocketstudios/clipshare/internal/clip"
	"github.com/emptypocketstudios/clipshare/internal/coord"
	"github.com/emptypocketstudios/clipshare/internal/message"
	"github.com/emptypocketstudios/clipshare/internal/peer"
)

func TestSyncOptionsValidation(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		wantErr bool
	}{
		{"listen only", map[string]any{"listen": 9777, "interval": "1s"}, false},
		{"peer only", map[string]any{"peer": "host:9777", "interval": "1s"}, false},
		{"both sides", map[string]any{"listen": 9777, "peer": "host:9777", "interval": "1s"}, false},
		{"fast interval", map[string]any{"peer": "host:1", "interval": "250ms"}, false},
		{"zero interval", map[string]any{"listen": 9777, "interval": "0s"}, true},
		{"negative interval", map[string]any{"listen": 9777, "interval": "-1s"}, true},
		{"port too large", map[string]any{"listen": 70000, "interval": "1s"}, true},
		{"negative port", map[string]any{"listen": -1, "interval": "1s"}, true},
		{"peer without port", map[string]any{"peer": "hostonly", "interval": "1s"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := syncOptionsFromViper(v)
			if (err != nil) != tt.wantErr {
				t.Errorf("syncOptionsFromViper() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatusResponseListenerOnly(t *testing.T) {
	ctx := context.Background()
	mem := clip.NewMemory("")
	c := coord.New(mem, nil, false)

	if err := mem.Set(ctx, "hello"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Poll(ctx); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	e := &engine{
		opts:      syncOptions{source: "hostA", listenPort: 9777},
		coord:     c,
		listener:  peer.NewListener(c, nil),
		startedAt: time.Now(),
	}

	resp := e.statusResponse()
	if resp.Type != message.TypeStatusResponse {
		t.Errorf("Type = %q, want STATUS_RESPONSE", resp.Type)
	}
	if resp.Source != "hostA" {
		t.Errorf("Source = %q, want hostA", resp.Source)
	}
	if resp.Role != message.RoleListener {
		t.Errorf("Role = %q, want listener", resp.Role)
	}
	if resp.Upstream != nil {
		t.Error("Upstream set on a listener-only daemon")
	}
	if resp.Stats == nil || resp.Stats.Polls != 1 || resp.Stats.LocalChanges != 1 {
		t.Errorf("Stats = %+v, want 1 poll and 1 local change", resp.Stats)
	}
	if resp.LastChange == nil {
		t.Fatal("LastChange missing after a local change")
	}
	if resp.LastChange.Origin != "local" || resp.LastChange.Bytes != len("hello") {
		t.Errorf("LastChange = %+v, want local/%d bytes", resp.LastChange, len("hello"))
	}
}

func TestStatusResponseWithSender(t *testing.T) {
	mem := clip.NewMemory("")
	s := peer.NewSender("far:9777", "hostA", nil)
	c := coord.New(mem, s, false)

	e := &engine{
		opts:      syncOptions{source: "hostA", peerAddr: "far:9777"},
		coord:     c,
		sender:    s,
		startedAt: time.Now(),
	}

	resp := e.statusResponse()
	if resp.Role != message.RoleSender {
		t.Errorf("Role = %q, want sender", resp.Role)
	}
	if resp.Upstream == nil || resp.Upstream.Addr != "far:9777" {
		t.Fatalf("Upstream = %+v, want addr far:9777", resp.Upstream)
	}
	if resp.Upstream.Connected {
		t.Error("Upstream.Connected = true before Run")
	}
	if resp.LastChange != nil {
		t.Errorf("LastChange = %+v before any change", resp.LastChange)
	}
}

func TestIsContainerID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0123456789ab", true},
		{"a1b2c3d4e5f60718", true},
		{"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", true},
		{"0123456789a", false},
		{"0123456789AB", false},
		{"my-laptop", false},
		{"workstation42", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isContainerID(tt.in); got != tt.want {
			t.Errorf("isContainerID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short text"); got != "short text" {
		t.Errorf("preview(short) = %q", got)
	}
	if got := preview("line1\nline2"); got != `line1\nline2` {
		t.Errorf("preview(multiline) = %q", got)
	}
	long := strings.Repeat("é", 200)
	got := preview(long)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("preview(long) = %q, want … suffix", got)
	}
	if n := len([]rune(strings.TrimSuffix(got, "…"))); n != 80 {
		t.Errorf("preview(long) kept %d runes, want 80", n)
	}
}
