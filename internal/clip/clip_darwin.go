//go:build darwin

package clip

import "os/exec"

func platformCommand() Accessor {
	if _, err := exec.LookPath("pbpaste"); err != nil {
		return nil
	}
	if _, err := exec.LookPath("pbcopy"); err != nil {
		return nil
	}
	return newCommandAccessor("pbcopy/pbpaste",
		[]string{"pbpaste"},
		[]string{"pbcopy"},
	)
}
