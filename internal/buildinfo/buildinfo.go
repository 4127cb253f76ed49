// Package buildinfo stores build-time metadata shared across packages.
package buildinfo

import "fmt"

// Build metadata, set from ldflags in main.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies mcpterm in outbound HTTP requests.
func UserAgent() string {
	return "mcpterm/" + Version
}

// String renders the version line printed by `mcpterm version`.
func String() string {
	return fmt.Sprintf("mcpterm %s (commit %s, built %s)", Version, Commit, Date)
}
