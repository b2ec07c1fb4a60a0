//go:build linux || darwin || windows

package clip

import (
	"context"
	"sync"

	"golang.design/x/clipboard"
)

var (
	nativeOnce sync.Once
	nativeErr  error
)

// Native returns the built-in clipboard backend, initialising the
// underlying library once per process. Initialisation fails on hosts
// without a display server.
func Native() (Accessor, error) {
	nativeOnce.Do(func() {
		nativeErr = clipboard.Init()
	})
	if nativeErr != nil {
		return nil, nativeErr
	}
	return nativeAccessor{}, nil
}

type nativeAccessor struct{}

func (nativeAccessor) Name() string { return "native" }

func (nativeAccessor) Get(context.Context) (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (nativeAccessor) Set(_ context.Context, text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
