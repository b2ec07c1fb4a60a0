package clip

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Subprocess timeouts. A clipboard utility that blocks longer than this
// is treated as a failed read/write, not waited out.
const (
	getTimeout = time.Second
	setTimeout = 2 * time.Second
)

// commandAccessor shells out to a pair of OS clipboard utilities, reading
// via getArgv's stdout and writing via setArgv's stdin.
type commandAccessor struct {
	name    string
	getArgv []string
	setArgv []string
}

func newCommandAccessor(name string, getArgv, setArgv []string) *commandAccessor {
	return &commandAccessor{name: name, getArgv: getArgv, setArgv: setArgv}
}

func (a *commandAccessor) Name() string { return a.name }

func (a *commandAccessor) Get(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, getTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.getArgv[0], a.getArgv[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w", a.getArgv[0], err)
	}
	return out.String(), nil
}

func (a *commandAccessor) Set(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, setTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.setArgv[0], a.setArgv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", a.setArgv[0], err)
	}
	return nil
}
