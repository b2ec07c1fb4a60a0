//go:build !darwin && !windows && !linux

package clip

import "errors"

func platformCommand() Accessor { return nil }

// Native is unsupported off the three desktop platforms.
func Native() (Accessor, error) {
	return nil, errors.New("native clipboard unsupported on this platform")
}
