// Package ipc provides the local socket channel used by CLI tools
// (copy/paste/status) to talk to a running clipshare daemon instead of
// opening their own TCP connections or racing the daemon for the OS
// clipboard.
//
// The channel speaks the same newline-delimited JSON protocol as the
// peer transport. The daemon listens on the socket; sub-commands probe
// for it and fall back to direct clipboard access if it is absent.
package ipc

import (
	"net"
	"os"
)

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - Linux:   $XDG_RUNTIME_DIR/clipshare.sock ($TMPDIR fallback)
//   - macOS:   $TMPDIR/clipshare.sock
//   - Windows: \\.\pipe\clipshare
//
// $CLIPSHARE_SOCKET overrides the default on every platform.
func SocketPath() string {
	if s := os.Getenv("CLIPSHARE_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a clipshare daemon appears to be listening
// on the IPC socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := dialIPC(SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on the IPC socket path, clearing any stale
// socket left behind by a previous run.
func Listen() (net.Listener, error) {
	return listenIPC(SocketPath())
}

// Dial connects to the daemon's IPC socket.
func Dial() (net.Conn, error) {
	return dialIPC(SocketPath())
}
