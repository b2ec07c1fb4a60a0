package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/emptypocketstudios/clipshare/internal/message"
)

// statusPayload wraps the STATUS_RESPONSE with process-level fields for
// the HTTP endpoint.
type statusPayload struct {
	*message.Message
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// serveHTTP answers /healthz and /status probes on ln. The listener is a
// cmux branch of the peer port, so probes share the wire address.
func serveHTTP(ctx context.Context, ln net.Listener, e *engine) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, _ *http.Request) {
		payload := statusPayload{
			Message: e.statusResponse(),
			Version: Version,
			Uptime:  time.Since(e.startedAt).Round(time.Second).String(),
		}
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			slog.Debug("status encode failed", "err", err)
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		slog.Error("http serve failed", "err", err)
	}
}
