package version

import "strings"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Summary returns a human-friendly version string for CLI output, falling
// back to "dev" when the build injected nothing.
func Summary() string {
	if v := strings.TrimSpace(Version); v != "" {
		return v
	}
	return "dev"
}
