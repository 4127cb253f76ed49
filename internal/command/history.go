package command

import "slices"

// MaxHistory bounds the number of remembered command lines.
const MaxHistory = 100

// History is an immutable list of executed command lines with a browsing
// cursor. Methods return updated copies and never modify shared storage.
type History struct {
	entries []string
	cursor  int
}

// Add records line as the newest entry, removing an older duplicate, and
// resets browsing.
func (h History) Add(line string) History {
	if line == "" {
		return h.Reset()
	}

	entries := make([]string, 0, min(len(h.entries)+1, MaxHistory))
	for _, e := range h.entries {
		if e != line {
			entries = append(entries, e)
		}
	}

	entries = append(entries, line)
	if len(entries) > MaxHistory {
		entries = slices.Clone(entries[len(entries)-MaxHistory:])
	}

	return History{entries: entries, cursor: len(entries)}
}

// Prev moves to the next older entry. It reports false when there is none.
func (h History) Prev() (History, string, bool) {
	if h.cursor <= 0 || len(h.entries) == 0 {
		return h, "", false
	}

	h.cursor--

	return h, h.entries[h.cursor], true
}

// Next moves to the next newer entry. Moving past the newest entry leaves
// browsing and yields an empty line.
func (h History) Next() (History, string, bool) {
	if h.cursor >= len(h.entries) {
		return h, "", false
	}

	h.cursor++
	if h.cursor == len(h.entries) {
		return h, "", true
	}

	return h, h.entries[h.cursor], true
}

// Reset leaves browsing mode.
func (h History) Reset() History {
	h.cursor = len(h.entries)
	return h
}

// Entries returns a copy of the entries, oldest first.
func (h History) Entries() []string {
	return slices.Clone(h.entries)
}

// Len reports the number of entries.
func (h History) Len() int {
	return len(h.entries)
}
