package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/soheilhy/cmux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/emptypocketstudios/clipshare/internal/clip"
	"github.com/emptypocketstudios/clipshare/internal/clock"
	"github.com/emptypocketstudios/clipshare/internal/coord"
	"github.com/emptypocketstudios/clipshare/internal/detector"
	"github.com/emptypocketstudios/clipshare/internal/ipc"
	"github.com/emptypocketstudios/clipshare/internal/message"
	"github.com/emptypocketstudios/clipshare/internal/peer"
	"github.com/emptypocketstudios/clipshare/internal/wire"
)

// addSyncFlags adds the sync daemon's flags to the root command.
func addSyncFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("listen", 0, "TCP port to accept peer connections on (0 = don't listen)")
	f.String("peer", "", "peer address to push clipboard changes to (host:port)")
	f.Duration("interval", time.Second, "clipboard poll interval")
	f.String("source", defaultSource(), "name for this host in status output")
	f.String("clipboard", clip.ModeAuto, "clipboard backend: auto|command|native|none")
	f.Bool("no-apply", false, "receive peer updates without writing them to the clipboard")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)
}

type syncOptions struct {
	listenPort int
	peerAddr   string
	interval   time.Duration
	source     string
	clipMode   string
	noApply    bool
}

func syncOptionsFromViper(v *viper.Viper) (syncOptions, error) {
	opts := syncOptions{
		listenPort: v.GetInt("listen"),
		peerAddr:   v.GetString("peer"),
		interval:   v.GetDuration("interval"),
		source:     v.GetString("source"),
		clipMode:   v.GetString("clipboard"),
		noApply:    v.GetBool("no-apply"),
	}
	if opts.interval <= 0 {
		return opts, fmt.Errorf("interval must be positive, got %s", opts.interval)
	}
	if opts.listenPort < 0 || opts.listenPort > 65535 {
		return opts, fmt.Errorf("listen port %d out of range", opts.listenPort)
	}
	if opts.peerAddr != "" {
		if _, _, err := net.SplitHostPort(opts.peerAddr); err != nil {
			return opts, fmt.Errorf("peer address %q: %w", opts.peerAddr, err)
		}
	}
	return opts, nil
}

// engine ties the running pieces of a sync daemon together for status
// reporting and IPC.
type engine struct {
	opts      syncOptions
	coord     *coord.Coordinator
	sender    *peer.Sender   // nil without --peer
	listener  *peer.Listener // nil without --listen
	startedAt time.Time
}

func runSync(v *viper.Viper) error {
	setupLogging(v)

	opts, err := syncOptionsFromViper(v)
	if err != nil {
		return err
	}
	if opts.listenPort == 0 && opts.peerAddr == "" {
		slog.Warn("nothing to do: pass --listen, --peer, or both")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accessor := clip.New(opts.clipMode)
	slog.Info("clipshare starting",
		"version", Version,
		"source", opts.source,
		"clipboard", accessor.Name(),
		"interval", opts.interval,
		"listen", opts.listenPort,
		"peer", opts.peerAddr,
		"apply_remote", !opts.noApply,
	)

	e := &engine{opts: opts, startedAt: time.Now()}
	if opts.peerAddr != "" {
		e.sender = peer.NewSender(opts.peerAddr, opts.source, nil)
		e.coord = coord.New(accessor, e.sender, opts.noApply)
	} else {
		e.coord = coord.New(accessor, nil, opts.noApply)
	}

	// Whatever is on the clipboard at startup is recorded, not broadcast.
	e.coord.Prime(ctx)

	var wg sync.WaitGroup

	if e.sender != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.sender.Run(ctx)
		}()
	}

	if opts.listenPort > 0 {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", opts.listenPort))
		if err != nil {
			return fmt.Errorf("listen :%d: %w", opts.listenPort, err)
		}
		slog.Info("listening", "addr", ln.Addr())

		e.listener = peer.NewListener(e.coord, e.statusResponse)

		// One port serves both: HTTP for /healthz and /status probes,
		// everything else is the peer wire protocol.
		m := cmux.New(ln)
		httpLn := m.Match(cmux.HTTP1Fast())
		wireLn := m.Match(cmux.Any())

		wg.Add(2)
		go func() {
			defer wg.Done()
			serveHTTP(ctx, httpLn, e)
		}()
		go func() {
			defer wg.Done()
			e.listener.Serve(ctx, wireLn)
		}()
		go func() {
			<-ctx.Done()
			_ = ln.Close()
		}()
		go func() {
			if err := m.Serve(); err != nil && ctx.Err() == nil {
				slog.Error("connection mux failed", "err", err)
			}
		}()
	}

	// IPC socket so copy/paste/status can talk to us instead of racing the
	// daemon for the OS clipboard.
	ipcLn, err := ipc.Listen()
	if err != nil {
		slog.Warn("IPC socket unavailable", "err", err)
	} else {
		slog.Info("IPC socket listening", "path", ipc.SocketPath())
		go func() {
			<-ctx.Done()
			_ = ipcLn.Close()
		}()
		go e.serveIPC(ctx, ipcLn)
	}

	det := detector.New(e.coord, clock.System(), opts.interval)
	det.Run(ctx)

	wg.Wait()
	slog.Info("clipshare stopped")
	return nil
}

func (e *engine) role() message.Role {
	switch {
	case e.listener != nil && e.sender != nil:
		return message.RoleBoth
	case e.listener != nil:
		return message.RoleListener
	default:
		return message.RoleSender
	}
}

// statusResponse assembles the STATUS_RESPONSE served over the wire
// protocol, the IPC socket, and HTTP /status.
func (e *engine) statusResponse() *message.Message {
	value, stats := e.coord.Snapshot()

	msg := &message.Message{
		Type:   message.TypeStatusResponse,
		Source: e.opts.source,
		Role:   e.role(),
		Stats: &message.Stats{
			Polls:         stats.Polls,
			PollFailures:  stats.PollFailures,
			LocalChanges:  stats.LocalChanges,
			RemoteApplies: stats.RemoteApplies,
		},
	}
	if e.listener != nil {
		msg.Peers = e.listener.Peers()
	}
	if e.sender != nil {
		st := e.sender.State()
		msg.Upstream = &message.UpstreamInfo{
			Addr:        st.Addr,
			Connected:   st.Connected,
			ConnectedAt: st.ConnectedAt,
			LastAttempt: st.LastAttempt,
		}
		msg.Stats.SendFailures = st.SendFailures
	}
	if !value.When.IsZero() {
		msg.LastChange = &message.ChangeInfo{
			Origin: string(value.Origin),
			When:   value.When,
			Bytes:  len(value.Content),
		}
	}
	return msg
}

func (e *engine) serveIPC(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go e.handleIPC(ctx, conn)
	}
}

// handleIPC serves one request from a copy/paste/status invocation.
func (e *engine) handleIPC(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	wc := wire.New(conn)

	msg, err := wc.ReadMsg()
	if err != nil {
		return
	}

	switch msg.Type {
	case message.TypeClipboard:
		text, err := msg.Text()
		if err != nil {
			_ = wc.WriteMsg(&message.Message{Type: message.TypeError, Error: err.Error()})
			return
		}
		if err := e.coord.ApplyLocal(ctx, text); err != nil {
			slog.Warn("ipc: copy failed", "err", err)
			_ = wc.WriteMsg(&message.Message{Type: message.TypeError, Error: err.Error()})
			return
		}
		slog.Debug("ipc: clipboard copied", "bytes", len(text))
		_ = wc.WriteMsg(&message.Message{Type: message.TypePong, Source: e.opts.source})

	case message.TypePaste:
		// Refresh first so a copy made moments ago is never missed.
		if err := e.coord.Poll(ctx); err != nil {
			slog.Debug("ipc: refresh before paste failed", "err", err)
		}
		value, _ := e.coord.Snapshot()
		_ = wc.WriteMsg(message.NewClipboard(e.opts.source, value.Content))

	case message.TypeStatus:
		_ = wc.WriteMsg(e.statusResponse())

	case message.TypePing:
		_ = wc.WriteMsg(&message.Message{Type: message.TypePong, Source: e.opts.source})

	default:
		slog.Warn("ipc: unexpected message type", "type", msg.Type)
	}
}
