// Package peer implements the two network halves of the sync engine: the
// outbound Sender pushing local clipboard changes to the configured peer,
// and the inbound Listener accepting peer connections and applying the
// content they deliver.
package peer

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/emptypocketstudios/clipshare/internal/message"
	"github.com/emptypocketstudios/clipshare/internal/wire"
)

const (
	dialTimeout    = 10 * time.Second
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Dialer opens the outbound peer connection. Tests substitute a stub.
type Dialer func(ctx context.Context, addr string) (net.Conn, error)

// DefaultDialer dials the peer over TCP.
func DefaultDialer(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

// State is a snapshot of the outbound peer connection for status
// reporting.
type State struct {
	Addr         string
	Connected    bool
	ConnectedAt  time.Time
	LastAttempt  time.Time
	SendFailures uint64
}

// Sender keeps one persistent connection to the remote peer and
// transmits the most recent locally observed clipboard value. Values
// superseded before they hit the wire are dropped; the newest always
// wins.
type Sender struct {
	addr   string
	source string
	dial   Dialer

	initial time.Duration
	max     time.Duration

	mu      sync.Mutex
	pending *string // latest unsent content, nil when drained
	state   State

	kick chan struct{}
}

// NewSender returns a Sender for the peer at addr. dial may be nil to
// use DefaultDialer.
func NewSender(addr, source string, dial Dialer) *Sender {
	if dial == nil {
		dial = DefaultDialer
	}
	return &Sender{
		addr:    addr,
		source:  source,
		dial:    dial,
		initial: initialBackoff,
		max:     maxBackoff,
		state:   State{Addr: addr},
		kick:    make(chan struct{}, 1),
	}
}

// Send queues content for transmission, replacing any value still
// waiting. Never blocks.
func (s *Sender) Send(content string) {
	s.mu.Lock()
	s.pending = &content
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// State returns a snapshot of the outbound connection.
func (s *Sender) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run delivers queued values until ctx is cancelled. The connection is
// dialed lazily, kept open across sends, and redialed with capped
// exponential backoff after a failure. A failed value goes back into the
// queue unless newer content has already replaced it.
func (s *Sender) Run(ctx context.Context) {
	var conn *wire.Conn
	defer func() {
		if conn != nil {
			_ = conn.Close()
		}
	}()

	delay := s.initial
	for {
		content, ok := s.next(ctx)
		if !ok {
			return
		}

		if conn == nil {
			c, err := s.connect(ctx)
			if err != nil {
				slog.Warn("peer connect failed", "addr", s.addr, "err", err, "retry_in", delay)
				s.requeue(content)
				if !sleepCtx(ctx, delay) {
					return
				}
				delay = min(delay*2, s.max)
				continue
			}
			conn = c
			delay = s.initial
			slog.Info("peer connected", "addr", s.addr)
		}

		if err := conn.WriteMsg(message.NewClipboard(s.source, content)); err != nil {
			slog.Warn("peer send failed", "addr", s.addr, "err", err)
			_ = conn.Close()
			conn = nil
			s.dropped()
			s.requeue(content)
			if !sleepCtx(ctx, delay) {
				return
			}
			delay = min(delay*2, s.max)
			continue
		}
		slog.Debug("clipboard sent", "addr", s.addr, "bytes", len(content))
	}
}

// next blocks until a value is queued or ctx is cancelled.
func (s *Sender) next(ctx context.Context) (string, bool) {
	for {
		s.mu.Lock()
		if s.pending != nil {
			content := *s.pending
			s.pending = nil
			s.mu.Unlock()
			return content, true
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", false
		case <-s.kick:
		}
	}
}

// requeue puts failed content back unless a newer value arrived while
// the attempt was in flight.
func (s *Sender) requeue(content string) {
	s.mu.Lock()
	if s.pending == nil {
		s.pending = &content
	}
	s.mu.Unlock()
}

func (s *Sender) connect(ctx context.Context) (*wire.Conn, error) {
	s.mu.Lock()
	s.state.LastAttempt = time.Now()
	s.mu.Unlock()

	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	nc, err := s.dial(dctx, s.addr)
	if err != nil {
		s.mu.Lock()
		s.state.Connected = false
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	s.state.Connected = true
	s.state.ConnectedAt = time.Now()
	s.mu.Unlock()
	return wire.New(nc), nil
}

// dropped records a failed send and marks the connection down.
func (s *Sender) dropped() {
	s.mu.Lock()
	s.state.Connected = false
	s.state.SendFailures++
	s.mu.Unlock()
}

// sleepCtx sleeps for d, returning false if ctx was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
