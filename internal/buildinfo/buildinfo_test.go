package buildinfo

import "testing"

func TestUserAgentAndString(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date

	t.Cleanup(func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	})

	Version, Commit, Date = "1.2.3", "abc123", "2026-01-02"

	if got := UserAgent(); got != "mcpterm/1.2.3" {
		t.Errorf("UserAgent() = %q", got)
	}

	if got, want := String(), "mcpterm 1.2.3 (commit abc123, built 2026-01-02)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
