//go:build linux

package clip

import "os/exec"

// Utility pairs probed in order: wl-clipboard first (Wayland), then the
// X11 tools. Both halves of a pair must be on PATH for it to be chosen.
var linuxCandidates = []struct {
	name string
	get  []string
	set  []string
}{
	{"wl-clipboard", []string{"wl-paste", "-n"}, []string{"wl-copy"}},
	{"xclip", []string{"xclip", "-selection", "clipboard", "-o"}, []string{"xclip", "-selection", "clipboard"}},
	{"xsel", []string{"xsel", "--clipboard", "--output"}, []string{"xsel", "--clipboard", "--input"}},
}

func platformCommand() Accessor {
	for _, c := range linuxCandidates {
		if _, err := exec.LookPath(c.get[0]); err != nil {
			continue
		}
		if _, err := exec.LookPath(c.set[0]); err != nil {
			continue
		}
		return newCommandAccessor(c.name, c.get, c.set)
	}
	return nil
}
