package peer

import (
	"bufio"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/emptypocketstudios/clipshare/internal/message"
	"github.com/emptypocketstudios/clipshare/internal/wire"
)

// chanApplier forwards applied content to a channel so tests can wait on it.
type chanApplier struct {
	ch chan string

	mu  sync.Mutex
	err error
}

func newChanApplier() *chanApplier {
	return &chanApplier{ch: make(chan string, 16)}
}

func (a *chanApplier) ApplyRemote(_ context.Context, content string) error {
	a.mu.Lock()
	err := a.err
	a.mu.Unlock()
	if err != nil {
		return err
	}
	a.ch <- content
	return nil
}

func (a *chanApplier) setErr(err error) {
	a.mu.Lock()
	a.err = err
	a.mu.Unlock()
}

func (a *chanApplier) next(t *testing.T) string {
	t.Helper()
	select {
	case content := <-a.ch:
		return content
	case <-time.After(2 * time.Second):
		t.Fatal("no content applied")
		return ""
	}
}

func startListener(t *testing.T, applier Applier, status StatusFunc) (*Listener, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	l := NewListener(applier, status)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("listener did not stop")
		}
	})
	return l, ln.Addr().String()
}

func dialPeer(t *testing.T, addr string) *wire.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return wire.New(conn)
}

func TestListenerAppliesClipboard(t *testing.T) {
	applier := newChanApplier()
	l, addr := startListener(t, applier, nil)

	wc := dialPeer(t, addr)
	if err := wc.WriteMsg(message.NewClipboard("peerA", "shared text")); err != nil {
		t.Fatalf("WriteMsg: %v", err)
	}

	if got := applier.next(t); got != "shared text" {
		t.Errorf("applied %q, want %q", got, "shared text")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(l.Peers()) == 0 {
		time.Sleep(time.Millisecond)
	}
	if peers := l.Peers(); len(peers) != 1 {
		t.Errorf("Peers() = %d entries, want 1", len(peers))
	}
}

func TestListenerDiscardsMalformedAndKeepsConnection(t *testing.T) {
	applier := newChanApplier()
	_, addr := startListener(t, applier, nil)

	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("this is not json\n")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if err := wire.New(conn).WriteMsg(message.NewClipboard("peerA", "after garbage")); err != nil {
		t.Fatalf("WriteMsg: %v", err)
	}

	if got := applier.next(t); got != "after garbage" {
		t.Errorf("applied %q, want %q", got, "after garbage")
	}
}

func TestListenerIgnoresEmptyContent(t *testing.T) {
	applier := newChanApplier()
	_, addr := startListener(t, applier, nil)

	wc := dialPeer(t, addr)
	if err := wc.WriteMsg(message.NewClipboard("peerA", "")); err != nil {
		t.Fatalf("WriteMsg empty: %v", err)
	}
	if err := wc.WriteMsg(message.NewClipboard("peerA", "real")); err != nil {
		t.Fatalf("WriteMsg: %v", err)
	}

	if got := applier.next(t); got != "real" {
		t.Errorf("applied %q, want %q (empty must be skipped)", got, "real")
	}
}

func TestListenerApplyFailureKeepsConnection(t *testing.T) {
	applier := newChanApplier()
	applier.setErr(context.DeadlineExceeded)
	_, addr := startListener(t, applier, nil)

	wc := dialPeer(t, addr)
	if err := wc.WriteMsg(message.NewClipboard("peerA", "fails to apply")); err != nil {
		t.Fatalf("WriteMsg: %v", err)
	}

	applier.setErr(nil)
	if err := wc.WriteMsg(message.NewClipboard("peerA", "applies fine")); err != nil {
		t.Fatalf("WriteMsg: %v", err)
	}

	if got := applier.next(t); got != "applies fine" {
		t.Errorf("applied %q, want %q", got, "applies fine")
	}
}

func TestListenerPingPong(t *testing.T) {
	_, addr := startListener(t, newChanApplier(), nil)

	wc := dialPeer(t, addr)
	if err := wc.WriteMsg(&message.Message{Type: message.TypePing, Source: "probe"}); err != nil {
		t.Fatalf("WriteMsg: %v", err)
	}

	reply, err := wc.ReadMsg()
	if err != nil {
		t.Fatalf("ReadMsg: %v", err)
	}
	if reply.Type != message.TypePong {
		t.Errorf("reply.Type = %q, want PONG", reply.Type)
	}
}

func TestListenerStatusResponse(t *testing.T) {
	status := func() *message.Message {
		return &message.Message{
			Type:   message.TypeStatusResponse,
			Source: "hostA",
			Role:   message.RoleBoth,
		}
	}
	_, addr := startListener(t, newChanApplier(), status)

	wc := dialPeer(t, addr)
	if err := wc.WriteMsg(&message.Message{Type: message.TypeStatus, Source: "probe"}); err != nil {
		t.Fatalf("WriteMsg: %v", err)
	}

	reply, err := wc.ReadMsg()
	if err != nil {
		t.Fatalf("ReadMsg: %v", err)
	}
	if reply.Type != message.TypeStatusResponse {
		t.Fatalf("reply.Type = %q, want STATUS_RESPONSE", reply.Type)
	}
	if reply.Source != "hostA" || reply.Role != message.RoleBoth {
		t.Errorf("reply Source/Role = %q/%q, want hostA/both", reply.Source, reply.Role)
	}
}

func TestListenerShutdownClosesConnections(t *testing.T) {
	applier := newChanApplier()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	l := NewListener(applier, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Serve(ctx, ln)
	}()

	conn, err := net.DialTimeout("tcp", ln.Addr().String(), 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Prove the server tracked the connection before shutting down.
	if err := wire.New(conn).WriteMsg(message.NewClipboard("peerA", "hello")); err != nil {
		t.Fatalf("WriteMsg: %v", err)
	}
	applier.next(t)

	cancel()
	<-done

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := bufio.NewReader(conn).ReadByte(); err == nil {
		t.Error("connection still open after shutdown")
	}
}
