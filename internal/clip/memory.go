package clip

import (
	"context"
	"sync"
)

// Memory is an in-process Accessor holding its text in memory. It backs
// tests across packages the way afero's in-memory filesystem does for
// file code. Safe for concurrent use.
type Memory struct {
	mu   sync.Mutex
	text string
}

// NewMemory returns a Memory holding text.
func NewMemory(text string) *Memory { return &Memory{text: text} }

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Get(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *Memory) Set(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}
