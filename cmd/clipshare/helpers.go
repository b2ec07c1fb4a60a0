package main

import "os"

// isContainerID reports whether s looks like a bare container ID (12 to
// 64 lowercase hex chars), which makes a poor name in status output.
func isContainerID(s string) bool {
	if len(s) < 12 || len(s) > 64 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

// defaultSource picks the name this host reports in status output and
// wire messages, preferring explicit env vars over the raw hostname.
func defaultSource() string {
	for _, env := range []string{
		"CLIPSHARE_SOURCE",
		"CONTAINER_NAME",
		"COMPOSE_SERVICE",
		"SERVICE_NAME",
		"HOSTNAME_FRIENDLY",
	} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	if isContainerID(h) {
		return "container-" + h[:8]
	}
	return h
}
