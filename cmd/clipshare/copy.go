package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/emptypocketstudios/clipshare/internal/clip"
	"github.com/emptypocketstudios/clipshare/internal/ipc"
	"github.com/emptypocketstudios/clipshare/internal/message"
	"github.com/emptypocketstudios/clipshare/internal/wire"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy stdin to the clipboard (like pbcopy)",
		Long: `Reads stdin and places it on the clipboard.

If a clipshare daemon is running, the text is handed to it over the IPC
socket so it is recorded and pushed to the peer immediately. Otherwise the
text is written straight to the OS clipboard.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runCopy(v) },
	}

	f := cmd.Flags()
	f.String("source", defaultSource(), "source identifier")
	f.String("clipboard", clip.ModeAuto, "clipboard backend used when no daemon is running")
	addConfigFlag(cmd)

	return cmd
}

func runCopy(v *viper.Viper) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	text := string(data)

	// Try the local daemon first.
	if ipc.IsRunning() {
		conn, err := ipc.Dial()
		if err == nil {
			defer conn.Close()
			wc := wire.New(conn)
			if err := wc.WriteMsg(message.NewClipboard(v.GetString("source"), text)); err != nil {
				return fmt.Errorf("ipc copy: %w", err)
			}
			wc.SetReadDeadline(5 * time.Second)
			resp, err := wc.ReadMsg()
			if err != nil {
				return fmt.Errorf("ipc copy: %w", err)
			}
			if resp.Type == message.TypeError {
				return fmt.Errorf("copy: %s", resp.Error)
			}
			return nil
		}
		slog.Warn("daemon socket present but not dialable", "err", err)
	}

	// No daemon: write to the OS clipboard directly.
	accessor := clip.New(v.GetString("clipboard"))
	if err := accessor.Set(context.Background(), text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	return nil
}
