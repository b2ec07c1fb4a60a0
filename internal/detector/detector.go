// Package detector drives the fixed-interval clipboard poll.
package detector

import (
	"context"
	"log/slog"
	"time"

	"github.com/emptypocketstudios/clipshare/internal/clock"
	"github.com/emptypocketstudios/clipshare/internal/coord"
)

// Detector polls the coordinator on a fixed schedule.
type Detector struct {
	coord    *coord.Coordinator
	clock    clock.Clock
	interval time.Duration
}

// New returns a Detector polling c every interval.
func New(c *coord.Coordinator, clk clock.Clock, interval time.Duration) *Detector {
	return &Detector{coord: c, clock: clk, interval: interval}
}

// Run polls until ctx is cancelled. A failed poll is logged and the next
// tick proceeds normally; no failure stops the loop.
func (d *Detector) Run(ctx context.Context) {
	t := d.clock.NewTicker(d.interval)
	defer t.Stop()

	slog.Debug("change detector started", "interval", d.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if err := d.coord.Poll(ctx); err != nil {
				slog.Warn("clipboard poll failed", "err", err)
			}
		}
	}
}
