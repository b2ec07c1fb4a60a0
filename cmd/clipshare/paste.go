package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/emptypocketstudios/clipshare/internal/clip"
	"github.com/emptypocketstudios/clipshare/internal/ipc"
	"github.com/emptypocketstudios/clipshare/internal/message"
	"github.com/emptypocketstudios/clipshare/internal/wire"
)

func newPasteCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Print the clipboard to stdout (like pbpaste)",
		Long: `Writes the current clipboard text to stdout.

If a clipshare daemon is running, the value is fetched from it over the IPC
socket; the daemon re-reads the OS clipboard first, so the output is never
stale. Otherwise the OS clipboard is read directly.

An empty clipboard prints nothing and exits 0.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runPaste(v) },
	}

	f := cmd.Flags()
	f.String("source", defaultSource(), "source identifier")
	f.String("clipboard", clip.ModeAuto, "clipboard backend used when no daemon is running")
	addConfigFlag(cmd)

	return cmd
}

func runPaste(v *viper.Viper) error {
	if ipc.IsRunning() {
		conn, err := ipc.Dial()
		if err == nil {
			defer conn.Close()
			wc := wire.New(conn)
			if err := wc.WriteMsg(&message.Message{
				Type:   message.TypePaste,
				Source: v.GetString("source"),
			}); err != nil {
				return fmt.Errorf("ipc paste: %w", err)
			}
			wc.SetReadDeadline(5 * time.Second)
			resp, err := wc.ReadMsg()
			if err != nil {
				return fmt.Errorf("ipc paste: %w", err)
			}
			if resp.Type == message.TypeError {
				return fmt.Errorf("paste: %s", resp.Error)
			}
			text, err := resp.Text()
			if err != nil {
				return fmt.Errorf("paste: %w", err)
			}
			_, err = os.Stdout.WriteString(text)
			return err
		}
	}

	// No daemon: read the OS clipboard directly.
	accessor := clip.New(v.GetString("clipboard"))
	text, err := accessor.Get(context.Background())
	if err != nil {
		return fmt.Errorf("clipboard read: %w", err)
	}
	_, err = os.Stdout.WriteString(text)
	return err
}
