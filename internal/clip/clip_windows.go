//go:build windows

package clip

import "os/exec"

// PowerShell cmdlet pair. -Raw on Get-Clipboard keeps embedded newlines
// intact instead of splitting into lines; Set-Clipboard reads the piped
// stdin of the powershell process.
func platformCommand() Accessor {
	if _, err := exec.LookPath("powershell"); err != nil {
		return nil
	}
	return newCommandAccessor("powershell",
		[]string{"powershell", "-NoProfile", "-Command", "Get-Clipboard", "-Raw"},
		[]string{"powershell", "-NoProfile", "-Command", "Set-Clipboard"},
	)
}
