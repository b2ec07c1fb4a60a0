package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/emptypocketstudios/clipshare/internal/clip"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print clipboard changes to stdout as they happen",
		Long: `Polls the clipboard and prints every change with a timestamp.
Useful for checking what a sync daemon on this host would see. Ctrl-C to
stop.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runWatch(v) },
	}

	f := cmd.Flags()
	f.Duration("interval", time.Second, "clipboard poll interval")
	f.String("clipboard", clip.ModeAuto, "clipboard backend: auto|command|native|none")
	f.Bool("verbose", false, "print full content instead of a one-line preview")
	addConfigFlag(cmd)

	return cmd
}

func runWatch(v *viper.Viper) error {
	interval := v.GetDuration("interval")
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}
	verbose := v.GetBool("verbose")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accessor := clip.New(v.GetString("clipboard"))
	fmt.Printf("watching clipboard via %s every %s\n", accessor.Name(), interval)

	// Content already present at startup is the baseline, not a change.
	last, err := accessor.Get(ctx)
	if err != nil {
		last = ""
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			content, err := accessor.Get(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "read failed: %v\n", err)
				continue
			}
			if content == "" || content == last {
				continue
			}
			last = content
			stamp := time.Now().Format("15:04:05")
			if verbose {
				fmt.Printf("[%s] %d bytes:\n%s\n", stamp, len(content), content)
			} else {
				fmt.Printf("[%s] %d bytes: %s\n", stamp, len(content), preview(content))
			}
		}
	}
}

// preview collapses content to a single short line for terminal display.
func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	runes := []rune(s)
	if len(runes) > 80 {
		return string(runes[:80]) + "…"
	}
	return s
}
