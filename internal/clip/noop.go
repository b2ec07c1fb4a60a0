package clip

import "context"

// Noop returns a no-op backend for headless environments (servers,
// containers, CI). Reads are always empty and writes are discarded.
func Noop() Accessor { return noopAccessor{} }

type noopAccessor struct{}

func (noopAccessor) Name() string                        { return "noop" }
func (noopAccessor) Get(context.Context) (string, error) { return "", nil }
func (noopAccessor) Set(context.Context, string) error   { return nil }
