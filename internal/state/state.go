// Package state holds the application state and its pure transition
// function. Transition never performs I/O: work such as connecting is
// returned as an Effect for the event loop to execute.
package state

import (
	"github.com/musher-dev/mcpterm/internal/command"
	"github.com/musher-dev/mcpterm/internal/mcp"
)

// SelectionKind says what a selection list picks.
type SelectionKind int

const (
	// SelectServer picks a server to connect to.
	SelectServer SelectionKind = iota
	// SelectToolInfo picks a tool to describe.
	SelectToolInfo
	// SelectToolRun picks a tool to run.
	SelectToolRun
)

// Selection is the candidate list shown in Select mode.
type Selection struct {
	Kind       SelectionKind
	Title      string
	Candidates []string
	Index      int
}

// Completion is the open completion popup in Command mode.
type Completion struct {
	Items []string
	Index int
}

// State is the complete application state. It is a value: transitions
// return a modified copy and never write through shared slices.
type State struct {
	Mode       Mode
	Input      Buffer
	Log        OutputLog
	Connection ConnectionStatus
	Generation uint64

	Servers []mcp.ServerDescriptor
	Tools   []mcp.Tool

	Selection  *Selection
	Completion *Completion
	History    command.History

	Status       string
	Scroll       int
	Width        int
	Height       int
	Ticks        uint64
	MouseEnabled bool
	Quit         bool
}

// New returns the initial state for the configured servers.
func New(servers []mcp.ServerDescriptor) State {
	s := State{
		Mode:       Normal,
		Connection: Disconnected{},
		Servers:    servers,
		Width:      80,
		Height:     24,
	}

	if len(servers) == 0 {
		s.Log = s.Log.Append("No MCP servers configured. Add mcp_servers to config.json.")
	} else {
		s.Log = s.Log.Append("Press : for commands, :h for help.")
	}

	return s
}

// ServerNames lists configured server names in order.
func (s State) ServerNames() []string {
	names := make([]string, len(s.Servers))
	for i, srv := range s.Servers {
		names[i] = srv.Name
	}

	return names
}

// ToolNames lists loaded tool names in order.
func (s State) ToolNames() []string {
	names := make([]string, len(s.Tools))
	for i, t := range s.Tools {
		names[i] = t.Name
	}

	return names
}

func (s State) server(name string) (mcp.ServerDescriptor, bool) {
	for _, srv := range s.Servers {
		if srv.Name == name {
			return srv, true
		}
	}

	return mcp.ServerDescriptor{}, false
}

func (s State) tool(name string) (mcp.Tool, bool) {
	for _, t := range s.Tools {
		if t.Name == name {
			return t, true
		}
	}

	return mcp.Tool{}, false
}

func (s State) logf(lines ...string) State {
	s.Log = s.Log.Append(lines...)
	return s
}

// page is the number of log lines one page scroll moves.
func (s State) page() int {
	return max(1, s.Height-3)
}

func (s State) clampScroll() State {
	s.Scroll = max(0, min(s.Scroll, s.Log.Len()-1))
	return s
}
