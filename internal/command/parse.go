// Package command parses command-mode input lines, completes them and keeps
// their history.
package command

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mattn/go-shellwords"
)

// Command is a parsed command line.
type Command interface {
	command()
}

// Quit exits the application.
type Quit struct{}

// Clear empties the output log.
type Clear struct{}

// Echo writes Text to the output log.
type Echo struct{ Text string }

// Help lists the available commands.
type Help struct{}

// Mouse toggles mouse capture.
type Mouse struct{ Enabled bool }

// ListServers lists configured servers.
type ListServers struct{}

// Status reports the connection status.
type Status struct{}

// ListTools requests the tool list from the active session.
type ListTools struct{}

// ShowTool prints the detailed description of one tool. An empty Name opens
// tool selection.
type ShowTool struct{ Name string }

// Connect connects to the named server. An empty Server opens server
// selection.
type Connect struct{ Server string }

// Disconnect closes the current session.
type Disconnect struct{}

// Run invokes a tool with positional arguments. An empty Tool opens tool
// selection.
type Run struct {
	Tool string
	Args []string
}

func (Quit) command()        {}
func (Clear) command()       {}
func (Echo) command()        {}
func (Help) command()        {}
func (Mouse) command()       {}
func (ListServers) command() {}
func (Status) command()      {}
func (ListTools) command()   {}
func (ShowTool) command()    {}
func (Connect) command()     {}
func (Disconnect) command()  {}
func (Run) command()         {}

// ErrorKind classifies parse failures.
type ErrorKind int

const (
	// Empty means the line held no command.
	Empty ErrorKind = iota
	// Unknown means the command word is not recognized.
	Unknown
	// InvalidSyntax means a known command got unusable arguments.
	InvalidSyntax
)

// Error is a command-line parse failure.
type Error struct {
	Kind   ErrorKind
	Name   string
	Detail string
}

func (e *Error) Error() string {
	switch e.Kind {
	case Empty:
		return "empty command"
	case Unknown:
		return fmt.Sprintf("unknown command: %s", e.Name)
	default:
		if e.Name == "" {
			return "invalid syntax: " + e.Detail
		}

		return fmt.Sprintf("invalid syntax for %s: %s", e.Name, e.Detail)
	}
}

// HelpLines is the output of the help command.
var HelpLines = []string{
	"Available commands:",
	"  :q, :quit                 Exit application",
	"  :clear                    Clear output",
	"  :echo <text>              Print text",
	"  :h, :help                 Show this help",
	"  :mouse on|off             Toggle mouse capture",
	"  :mcp list                 List configured servers",
	"  :mcp status               Show connection status",
	"  :mcp connect [server]     Connect to a server (alias: cn)",
	"  :mcp disconnect           Close the current session",
	"  :mcp tools                List tools of the connected server",
	"  :mcp tool [name]          Describe a tool",
	"  :mcp run [tool] [args]    Validate a tool call (quote JSON arguments)",
}

// Parse turns a command line (without the leading ':') into a Command.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ":"))
	if line == "" {
		return nil, &Error{Kind: Empty}
	}

	name, rest := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		name, rest = line[:i], line[i:]
	}

	switch name {
	case "echo":
		return Echo{Text: strings.TrimSpace(rest)}, nil
	case "q", "quit":
		return noArgs(name, rest, Quit{})
	case "clear":
		return noArgs(name, rest, Clear{})
	case "h", "help":
		return noArgs(name, rest, Help{})
	}

	words, err := split(line)
	if err != nil {
		return nil, err
	}

	switch words[0] {
	case "mouse":
		return parseMouse(words[1:])
	case "mcp":
		return parseMCP(words[1:])
	default:
		return nil, &Error{Kind: Unknown, Name: words[0]}
	}
}

func split(line string) ([]string, error) {
	parser := shellwords.NewParser()

	words, err := parser.Parse(line)
	if err != nil {
		return nil, &Error{Kind: InvalidSyntax, Detail: "unterminated quote"}
	}

	if runes := []rune(line); parser.Position >= 0 && parser.Position < len(runes) {
		return nil, &Error{Kind: InvalidSyntax, Detail: fmt.Sprintf("unexpected %q", runes[parser.Position])}
	}

	if len(words) == 0 {
		return nil, &Error{Kind: Empty}
	}

	return words, nil
}

func noArgs(name, rest string, cmd Command) (Command, error) {
	if strings.TrimSpace(rest) != "" {
		return nil, &Error{Kind: InvalidSyntax, Name: name, Detail: "takes no arguments"}
	}

	return cmd, nil
}

func parseMouse(args []string) (Command, error) {
	if len(args) != 1 {
		return nil, &Error{Kind: InvalidSyntax, Name: "mouse", Detail: "expected on or off"}
	}

	switch args[0] {
	case "on":
		return Mouse{Enabled: true}, nil
	case "off":
		return Mouse{Enabled: false}, nil
	default:
		return nil, &Error{Kind: InvalidSyntax, Name: "mouse", Detail: "expected on or off"}
	}
}

func parseMCP(args []string) (Command, error) {
	if len(args) == 0 {
		return nil, &Error{Kind: InvalidSyntax, Name: "mcp", Detail: "missing subcommand"}
	}

	sub, rest := args[0], args[1:]

	optionalOne := func(name string) (string, error) {
		switch len(rest) {
		case 0:
			return "", nil
		case 1:
			return rest[0], nil
		default:
			return "", &Error{Kind: InvalidSyntax, Name: "mcp " + name, Detail: "expected at most one argument"}
		}
	}

	switch sub {
	case "list":
		return mcpNoArgs(sub, rest, ListServers{})
	case "status":
		return mcpNoArgs(sub, rest, Status{})
	case "tools":
		return mcpNoArgs(sub, rest, ListTools{})
	case "disconnect":
		return mcpNoArgs(sub, rest, Disconnect{})
	case "tool":
		name, err := optionalOne(sub)
		if err != nil {
			return nil, err
		}

		return ShowTool{Name: name}, nil
	case "connect", "cn":
		server, err := optionalOne(sub)
		if err != nil {
			return nil, err
		}

		return Connect{Server: server}, nil
	case "run":
		if len(rest) == 0 {
			return Run{}, nil
		}

		return Run{Tool: rest[0], Args: rest[1:]}, nil
	default:
		return nil, &Error{Kind: Unknown, Name: "mcp " + sub}
	}
}

func mcpNoArgs(sub string, rest []string, cmd Command) (Command, error) {
	if len(rest) > 0 {
		return nil, &Error{Kind: InvalidSyntax, Name: "mcp " + sub, Detail: "takes no arguments"}
	}

	return cmd, nil
}
