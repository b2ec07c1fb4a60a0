// Package coord owns the authoritative clipboard state shared by the
// change detector, the peer listener, and the peer sender.
//
// All state transitions funnel through one mutex. The clipboard itself is
// read (Poll) and written (ApplyRemote, ApplyLocal) inside the critical
// section, so a value applied from the peer is visible to the very next
// poll and a poll can never observe state mid-apply.
package coord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/emptypocketstudios/clipshare/internal/clip"
	"github.com/emptypocketstudios/clipshare/internal/message"
)

// Origin identifies where the current clipboard value came from.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

// Value is a snapshot of the last known clipboard state.
type Value struct {
	Content string
	Origin  Origin
	When    time.Time
}

// Stats counts engine activity since startup.
type Stats struct {
	Polls         uint64
	PollFailures  uint64
	LocalChanges  uint64
	RemoteApplies uint64
}

// Sender receives locally observed clipboard changes for propagation.
// Send must not block.
type Sender interface {
	Send(content string)
}

// Coordinator serialises every clipboard state transition and enforces
// the no-echo rule: content applied from the peer is recorded before the
// next poll runs, so the poll sees it as already known rather than as a
// fresh local change.
type Coordinator struct {
	accessor clip.Accessor
	sender   Sender // nil when no peer is configured
	noApply  bool

	mu      sync.Mutex
	value   Value
	pending bool // remote value applied, confirming poll not yet seen
	stats   Stats
}

// New returns a Coordinator over accessor. sender may be nil when no peer
// is configured. noApply keeps remote updates off the OS clipboard; the
// stored value then keeps tracking local state only.
func New(accessor clip.Accessor, sender Sender, noApply bool) *Coordinator {
	return &Coordinator{
		accessor: accessor,
		sender:   sender,
		noApply:  noApply,
	}
}

// Prime seeds the stored value from the current clipboard without
// emitting, so content that predates startup is not broadcast.
func (c *Coordinator) Prime(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	content, err := c.accessor.Get(ctx)
	if err != nil {
		slog.Warn("initial clipboard read failed", "err", err)
		return
	}
	if content == "" {
		return
	}
	c.value = Value{Content: content, Origin: OriginLocal, When: time.Now()}
	slog.Debug("clipboard primed", "bytes", len(content))
}

// Poll reads the clipboard and classifies the result. New content is
// recorded with Local origin and handed to the sender; re-reading the
// value most recently applied from the peer counts as confirmation and
// closes the echo window. Read failures and empty reads leave state
// untouched.
func (c *Coordinator) Poll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Polls++
	content, err := c.accessor.Get(ctx)
	if err != nil {
		c.stats.PollFailures++
		return fmt.Errorf("clipboard read: %w", err)
	}
	c.classifyLocked(content)
	return nil
}

// OnLocalChange records externally observed local content, bypassing the
// accessor read. Classification matches Poll.
func (c *Coordinator) OnLocalChange(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classifyLocked(content)
}

// classifyLocked decides what polled content means. Must hold c.mu.
func (c *Coordinator) classifyLocked(content string) {
	if content == "" {
		return
	}
	if content == c.value.Content {
		if c.pending {
			// The peer's value survived a full poll cycle on the OS
			// clipboard; the echo window closes without a re-send.
			c.pending = false
			slog.Debug("remote value confirmed", "bytes", len(content))
		}
		return
	}

	// A local edit outranks any pending echo window.
	c.pending = false
	c.value = Value{Content: content, Origin: OriginLocal, When: time.Now()}
	c.stats.LocalChanges++
	message.LogContent("local clipboard change", string(OriginLocal), content)
	if c.sender != nil {
		c.sender.Send(content)
	}
}

// ApplyRemote writes peer content to the local clipboard and arms echo
// suppression. Content equal to the stored value is a no-op. A clipboard
// write failure leaves the stored value unchanged so a later remote
// update can retry.
func (c *Coordinator) ApplyRemote(ctx context.Context, content string) error {
	if content == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if content == c.value.Content {
		return nil
	}
	if c.noApply {
		slog.Debug("remote update not applied", "bytes", len(content))
		return nil
	}
	if err := c.accessor.Set(ctx, content); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	c.value = Value{Content: content, Origin: OriginRemote, When: time.Now()}
	c.pending = true
	c.stats.RemoteApplies++
	message.LogContent("remote clipboard applied", string(OriginRemote), content)
	return nil
}

// ApplyLocal writes content to the clipboard as if the user had copied it
// here, records it with Local origin, and hands it to the sender. The
// copy subcommand funnels through this path.
func (c *Coordinator) ApplyLocal(ctx context.Context, content string) error {
	if content == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.accessor.Set(ctx, content); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	c.classifyLocked(content)
	return nil
}

// Snapshot returns the current value and counters.
func (c *Coordinator) Snapshot() (Value, Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.stats
}
