package state

import "github.com/musher-dev/mcpterm/internal/mcp"

// Effect describes work for the event loop to perform after a transition.
// A nil Effect means nothing to do.
type Effect interface {
	effect()
}

// ConnectEffect starts a connection attempt to Server.
type ConnectEffect struct {
	Server mcp.ServerDescriptor
}

// DisconnectEffect tears down the current session.
type DisconnectEffect struct{}

// ListToolsEffect requests the tool list from the active session.
type ListToolsEffect struct{}

// QuitEffect ends the event loop.
type QuitEffect struct{}

// SetMouseEffect toggles terminal mouse capture.
type SetMouseEffect struct {
	Enabled bool
}

func (ConnectEffect) effect()    {}
func (DisconnectEffect) effect() {}
func (ListToolsEffect) effect()  {}
func (QuitEffect) effect()       {}
func (SetMouseEffect) effect()   {}
