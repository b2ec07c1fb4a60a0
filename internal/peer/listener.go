package peer

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/emptypocketstudios/clipshare/internal/message"
	"github.com/emptypocketstudios/clipshare/internal/wire"
)

// Applier applies clipboard content received from a peer. Implemented by
// the coordinator.
type Applier interface {
	ApplyRemote(ctx context.Context, content string) error
}

// StatusFunc builds the STATUS_RESPONSE payload for inbound status
// requests.
type StatusFunc func() *message.Message

// Listener accepts inbound peer connections and feeds received clipboard
// updates to the applier. Connections are handled concurrently; one
// misbehaving peer affects only its own connection.
type Listener struct {
	applier Applier
	status  StatusFunc

	mu    sync.Mutex
	conns map[string]*connEntry
}

type connEntry struct {
	wc          *wire.Conn
	connectedAt time.Time
	lastSeen    time.Time
}

// NewListener returns a Listener applying inbound content via applier.
// status may be nil; STATUS requests then get an empty response.
func NewListener(applier Applier, status StatusFunc) *Listener {
	return &Listener{
		applier: applier,
		status:  status,
		conns:   make(map[string]*connEntry),
	}
}

// Serve accepts connections on ln until ctx is cancelled, then closes ln
// and every tracked connection.
func (l *Listener) Serve(ctx context.Context, ln net.Listener) {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
		l.closeAll()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("accept failed", "err", err)
			// Pause so a persistent failure cannot spin the loop.
			select {
			case <-ctx.Done():
				return
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		go l.handle(ctx, conn)
	}
}

// handle runs the read loop for one peer connection. Malformed lines are
// discarded without touching state; only IO errors end the loop.
func (l *Listener) handle(ctx context.Context, nc net.Conn) {
	wc := wire.New(nc)
	addr := nc.RemoteAddr().String()
	log := slog.With("peer", addr)

	total := l.track(addr, wc)
	log.Info("peer connected", "total", total)
	defer func() {
		l.untrack(addr)
		_ = wc.Close()
		log.Info("peer disconnected")
	}()

	for {
		msg, err := wc.ReadMsg()
		if err != nil {
			if errors.Is(err, message.ErrMalformed) {
				log.Warn("malformed message discarded", "err", err)
				continue
			}
			if !errors.Is(err, net.ErrClosed) {
				log.Debug("connection closed", "err", err)
			}
			return
		}
		l.touch(addr)

		switch msg.Type {
		case message.TypeClipboard:
			content, err := msg.Text()
			if err != nil {
				log.Warn("malformed message discarded", "err", err)
				continue
			}
			if content == "" {
				continue
			}
			if err := l.applier.ApplyRemote(ctx, content); err != nil {
				log.Error("apply failed", "err", err)
			}

		case message.TypePing:
			l.reply(wc, &message.Message{Type: message.TypePong})

		case message.TypePong:
			// lastSeen already updated

		case message.TypeStatus:
			if l.status != nil {
				l.reply(wc, l.status())
			} else {
				l.reply(wc, &message.Message{Type: message.TypeStatusResponse})
			}

		default:
			log.Warn("unexpected message type", "type", msg.Type)
		}
	}
}

func (l *Listener) reply(wc *wire.Conn, msg *message.Message) {
	if err := wc.WriteMsg(msg); err != nil {
		slog.Warn("reply failed", "err", err)
	}
}

func (l *Listener) track(addr string, wc *wire.Conn) int {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conns[addr] = &connEntry{wc: wc, connectedAt: now, lastSeen: now}
	return len(l.conns)
}

func (l *Listener) untrack(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.conns, addr)
}

func (l *Listener) touch(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.conns[addr]; ok {
		e.lastSeen = time.Now()
	}
}

func (l *Listener) closeAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.conns {
		_ = e.wc.Close()
	}
}

// Peers returns a snapshot of the inbound connections for status
// reporting.
func (l *Listener) Peers() []message.PeerInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]message.PeerInfo, 0, len(l.conns))
	for addr, e := range l.conns {
		out = append(out, message.PeerInfo{
			Addr:        addr,
			ConnectedAt: e.connectedAt,
			LastSeen:    e.lastSeen,
		})
	}
	return out
}
