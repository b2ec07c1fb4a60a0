// Package message defines the clipshare wire protocol.
//
// All messages are newline-delimited JSON. Clipboard content is always
// base64-encoded so arbitrary text (embedded newlines included) is safe to
// frame as exactly one line: <json>\n
package message

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Type identifies the kind of message.
type Type string

const (
	TypeClipboard      Type = "CLIPBOARD"
	TypePing           Type = "PING"
	TypePong           Type = "PONG"
	TypeStatus         Type = "STATUS"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypePaste          Type = "PASTE"
	TypeError          Type = "ERROR"
)

// Role identifies how a process participates in a sync pair.
type Role string

const (
	RoleListener Role = "listener"
	RoleSender   Role = "sender"
	RoleBoth     Role = "both"
)

// ErrMalformed reports an inbound message that could not be parsed.
// Read loops use errors.Is to tell parse errors (discard the line, keep
// the connection) apart from IO errors (drop the connection).
var ErrMalformed = errors.New("malformed message")

// PeerInfo carries metadata about one inbound peer connection, used in
// STATUS responses.
type PeerInfo struct {
	Addr        string    `json:"addr"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// UpstreamInfo carries metadata about the outbound peer connection.
type UpstreamInfo struct {
	Addr        string    `json:"addr"`
	Connected   bool      `json:"connected"`
	ConnectedAt time.Time `json:"connected_at"`
	LastAttempt time.Time `json:"last_attempt"`
}

// Stats counts sync engine activity since startup.
type Stats struct {
	Polls         uint64 `json:"polls"`
	PollFailures  uint64 `json:"poll_failures"`
	LocalChanges  uint64 `json:"local_changes"`
	RemoteApplies uint64 `json:"remote_applies"`
	SendFailures  uint64 `json:"send_failures"`
}

// ChangeInfo describes the most recent clipboard transition without
// exposing its content.
type ChangeInfo struct {
	Origin string    `json:"origin"`
	When   time.Time `json:"when"`
	Bytes  int       `json:"bytes"`
}

// Message is the top-level wire envelope.
type Message struct {
	// Always present
	Type   Type   `json:"type"`
	Source string `json:"source,omitempty"`

	// CLIPBOARD: base64-encoded clipboard text
	Content string `json:"content,omitempty"`

	// STATUS_RESPONSE
	Role       Role          `json:"role,omitempty"`
	Peers      []PeerInfo    `json:"peers,omitempty"`
	Upstream   *UpstreamInfo `json:"upstream,omitempty"`
	Stats      *Stats        `json:"stats,omitempty"`
	LastChange *ChangeInfo   `json:"last_change,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// NewClipboard builds a CLIPBOARD message carrying text.
func NewClipboard(source, text string) *Message {
	return &Message{
		Type:    TypeClipboard,
		Source:  source,
		Content: base64.StdEncoding.EncodeToString([]byte(text)),
	}
}

// Text returns the decoded clipboard content.
func (m *Message) Text() (string, error) {
	b, err := base64.StdEncoding.DecodeString(m.Content)
	if err != nil {
		return "", fmt.Errorf("%w: content: %v", ErrMalformed, err)
	}
	return string(b), nil
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return &m, nil
}
