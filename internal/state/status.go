package state

import (
	"fmt"

	"github.com/musher-dev/mcpterm/internal/mcp"
)

// ConnectionStatus is the lifecycle of the current connection attempt.
type ConnectionStatus interface {
	connectionStatus()
	fmt.Stringer
}

// Disconnected means no attempt is in progress.
type Disconnected struct {
	Reason string
}

// Connecting means the discovery stream is being opened.
type Connecting struct {
	Server     mcp.ServerDescriptor
	Generation uint64
}

// AwaitingEndpoint means the stream is open and the session endpoint or the
// initialize response is pending. Endpoint is empty until discovered.
type AwaitingEndpoint struct {
	Server     mcp.ServerDescriptor
	Generation uint64
	Endpoint   string
}

// SessionActive means the handshake completed.
type SessionActive struct {
	Server     mcp.ServerDescriptor
	Generation uint64
	Endpoint   string
	ServerInfo mcp.Implementation
}

// Failed means the attempt ended with an error.
type Failed struct {
	Server     mcp.ServerDescriptor
	Generation uint64
	Reason     string
}

func (Disconnected) connectionStatus()     {}
func (Connecting) connectionStatus()       {}
func (AwaitingEndpoint) connectionStatus() {}
func (SessionActive) connectionStatus()    {}
func (Failed) connectionStatus()           {}

func (s Disconnected) String() string {
	if s.Reason == "" {
		return "disconnected"
	}

	return "disconnected (" + s.Reason + ")"
}

func (s Connecting) String() string {
	return "connecting to " + s.Server.Name
}

func (s AwaitingEndpoint) String() string {
	if s.Endpoint == "" {
		return "waiting for endpoint from " + s.Server.Name
	}

	return "initializing session with " + s.Server.Name
}

func (s SessionActive) String() string {
	return "connected to " + s.Server.Name
}

func (s Failed) String() string {
	return fmt.Sprintf("connection to %s failed: %s", s.Server.Name, s.Reason)
}

// InProgress reports whether status is a non-terminal state.
func InProgress(status ConnectionStatus) bool {
	switch status.(type) {
	case Connecting, AwaitingEndpoint, SessionActive:
		return true
	default:
		return false
	}
}

// Pending reports whether status is connecting but not yet active.
func Pending(status ConnectionStatus) bool {
	switch status.(type) {
	case Connecting, AwaitingEndpoint:
		return true
	default:
		return false
	}
}

// ServerOf returns the server of an attempt, if any.
func ServerOf(status ConnectionStatus) (mcp.ServerDescriptor, bool) {
	switch s := status.(type) {
	case Connecting:
		return s.Server, true
	case AwaitingEndpoint:
		return s.Server, true
	case SessionActive:
		return s.Server, true
	case Failed:
		return s.Server, true
	default:
		return mcp.ServerDescriptor{}, false
	}
}
