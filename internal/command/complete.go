package command

import (
	"slices"
	"strings"
)

// Lists holds the dynamic word lists completion draws from.
type Lists struct {
	Servers []string
	Tools   []string
}

var (
	commandWords  = []string{"clear", "echo", "h", "help", "mcp", "mouse", "q", "quit"}
	mcpSubcommand = []string{"cn", "connect", "disconnect", "list", "run", "status", "tool", "tools"}
	mouseStates   = []string{"off", "on"}
)

// words returns the candidate list for the word at position len(prefix),
// given the completed words before it.
func (l Lists) words(prefix []string) []string {
	switch len(prefix) {
	case 0:
		return commandWords
	case 1:
		switch prefix[0] {
		case "mcp":
			return mcpSubcommand
		case "mouse":
			return mouseStates
		}
	case 2:
		if prefix[0] != "mcp" {
			return nil
		}

		switch prefix[1] {
		case "connect", "cn":
			return l.Servers
		case "tool", "run":
			return l.Tools
		}
	}

	return nil
}

// Complete returns every completion of line, each being line with its last
// word replaced by a matching candidate. A trailing space starts a new word.
func Complete(line string, lists Lists) []string {
	fields := strings.Fields(line)

	var (
		prefix  []string
		partial string
	)

	if line == "" || strings.HasSuffix(line, " ") {
		prefix = fields
	} else {
		prefix = fields[:len(fields)-1]
		partial = fields[len(fields)-1]
	}

	var out []string

	for _, word := range lists.words(prefix) {
		if !strings.HasPrefix(word, partial) {
			continue
		}

		completed := strings.Join(append(slices.Clone(prefix), word), " ")
		if !slices.Contains(out, completed) {
			out = append(out, completed)
		}
	}

	return out
}
