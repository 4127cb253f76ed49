package state

import (
	"fmt"

	"github.com/musher-dev/mcpterm/internal/mcp"
	"github.com/musher-dev/mcpterm/internal/schema"
)

func onProtocol(s State, ev mcp.Event) (State, Effect) {
	if c, ok := ev.(mcp.Connecting); ok && c.Generation > s.Generation {
		s.Generation = c.Generation
		s.Connection = Connecting{Server: c.Server, Generation: c.Generation}
		s.Tools = nil
		s.Status = "connecting to " + c.Server.Name

		return s.logf(fmt.Sprintf("Connecting to %s (%s)...", c.Server.Name, c.Server.URL)), nil
	}

	if ev.AttemptGeneration() != s.Generation {
		return s, nil
	}

	switch ev := ev.(type) {
	case mcp.StreamOpened:
		if c, ok := s.Connection.(Connecting); ok {
			s.Connection = AwaitingEndpoint{Server: c.Server, Generation: c.Generation}
		}

		return s, nil
	case mcp.EndpointDiscovered:
		switch c := s.Connection.(type) {
		case Connecting:
			s.Connection = AwaitingEndpoint{Server: c.Server, Generation: c.Generation, Endpoint: ev.Endpoint}
		case AwaitingEndpoint:
			c.Endpoint = ev.Endpoint
			s.Connection = c
		}

		return s, nil
	case mcp.SessionInitialized:
		c, ok := s.Connection.(AwaitingEndpoint)
		if !ok || c.Endpoint == "" {
			return s, nil
		}

		s.Connection = SessionActive{
			Server:     c.Server,
			Generation: c.Generation,
			Endpoint:   c.Endpoint,
			ServerInfo: ev.Server,
		}
		s.Status = "connected to " + c.Server.Name

		line := "Connected to " + c.Server.Name
		if ev.Server.Name != "" {
			line += fmt.Sprintf(" (%s %s)", ev.Server.Name, ev.Server.Version)
		}

		return s.logf(line), ListToolsEffect{}
	case mcp.ConnectFailed:
		srv, _ := ServerOf(s.Connection)
		if ev.Server.Name != "" {
			srv = ev.Server
		}

		reason := "unknown error"
		if ev.Err != nil {
			reason = ev.Err.Error()
		}

		s.Connection = Failed{Server: srv, Generation: ev.Generation, Reason: reason}
		s.Status = "connection failed"

		return s.logf(fmt.Sprintf("Error: connection to %s failed: %s", srv.Name, reason)), nil
	case mcp.Disconnected:
		wasActive := InProgress(s.Connection)
		s.Connection = Disconnected{Reason: ev.Reason}
		s.Tools = nil
		s.Status = "disconnected"

		if !wasActive {
			return s, nil
		}

		return s.logf("Disconnected: " + ev.Reason), nil
	case mcp.ResponseReceived:
		return onResponse(s, ev), nil
	case mcp.RequestFailed:
		return s.logf(fmt.Sprintf("Error: request %s #%d failed: %v", ev.Method, ev.ID, ev.Err)), nil
	case mcp.RequestCancelled:
		return s.logf(fmt.Sprintf("Request %s #%d cancelled", ev.Method, ev.ID)), nil
	case mcp.ProtocolWarning:
		return s.logf(fmt.Sprintf("Warning: %s: %s", ev.Kind, ev.Detail)), nil
	case mcp.NotificationReceived:
		return s.logf("Notification: " + ev.Method), nil
	default:
		return s, nil
	}
}

func onResponse(s State, ev mcp.ResponseReceived) State {
	if ev.Err != nil {
		return s.logf(fmt.Sprintf("Error: %s #%d: %v", ev.Method, ev.ID, ev.Err))
	}

	if ev.Method != mcp.MethodListTools {
		return s.logf(fmt.Sprintf("Response to %s #%d: %s", ev.Method, ev.ID, ev.Result))
	}

	tools, err := mcp.DecodeTools(ev.Result)
	if err != nil {
		return s.logf("Warning: " + err.Error())
	}

	s.Tools = uniqueTools(tools)

	if len(s.Tools) == 0 {
		return s.logf("Server offers no tools")
	}

	s = s.logf(fmt.Sprintf("Available tools (%d):", len(s.Tools)))
	for i, t := range s.Tools {
		s = s.logf(fmt.Sprintf("  [%d] %s", i+1, schema.Compact(t)))
	}

	return s
}

func uniqueTools(tools []mcp.Tool) []mcp.Tool {
	seen := make(map[string]bool, len(tools))
	out := make([]mcp.Tool, 0, len(tools))

	for _, t := range tools {
		if t.Name == "" || seen[t.Name] {
			continue
		}

		seen[t.Name] = true
		out = append(out, t)
	}

	return out
}
