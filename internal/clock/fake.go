package clock

import (
	"sync"
	"time"
)

// Fake is a manually driven Clock for tests. Tick blocks until the ticker
// consumer has received the tick, which makes poll loops deterministic: a
// second Tick cannot start before the work behind the first one began.
type Fake struct {
	mu   sync.Mutex
	now  time.Time
	tick chan time.Time
}

// NewFake returns a Fake starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{
		now:  start,
		tick: make(chan time.Time),
	}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// NewTicker returns the fake's single shared ticker; d is ignored.
func (f *Fake) NewTicker(_ time.Duration) Ticker { return fakeTicker{f} }

// Tick advances the clock by d and delivers one tick, blocking until it
// is received.
func (f *Fake) Tick(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now
	f.mu.Unlock()
	f.tick <- now
}

type fakeTicker struct{ f *Fake }

func (t fakeTicker) C() <-chan time.Time { return t.f.tick }
func (t fakeTicker) Stop()               {}
