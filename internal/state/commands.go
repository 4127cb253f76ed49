package state

import (
	"encoding/json"
	"fmt"

	"github.com/musher-dev/mcpterm/internal/command"
	"github.com/musher-dev/mcpterm/internal/mcp"
	"github.com/musher-dev/mcpterm/internal/schema"
)

// Execute runs cmd without going through Command mode; the mode and history
// are left untouched. The event loop uses it for start-up commands.
func Execute(s State, cmd command.Command) (State, Effect) {
	return execute(s, cmd)
}

func execute(s State, cmd command.Command) (State, Effect) {
	switch cmd := cmd.(type) {
	case command.Quit:
		s.Quit = true
		return s, QuitEffect{}
	case command.Clear:
		s.Log = OutputLog{}
		s.Scroll = 0

		return s, nil
	case command.Echo:
		return s.logf(cmd.Text), nil
	case command.Help:
		return s.logf(command.HelpLines...), nil
	case command.Mouse:
		s.MouseEnabled = cmd.Enabled
		if cmd.Enabled {
			s = s.logf("Mouse capture enabled")
		} else {
			s = s.logf("Mouse capture disabled")
		}

		return s, SetMouseEffect{Enabled: cmd.Enabled}
	case command.ListServers:
		return listServers(s), nil
	case command.Status:
		return status(s), nil
	case command.ListTools:
		if _, ok := s.Connection.(SessionActive); !ok {
			return s.logf("Error: " + mcp.ErrSessionNotReady.Error()), nil
		}

		return s.logf("Requesting tool list..."), ListToolsEffect{}
	case command.ShowTool:
		if cmd.Name == "" {
			return selectTool(s, SelectToolInfo)
		}

		return showTool(s, cmd.Name), nil
	case command.Connect:
		if cmd.Server == "" {
			return selectServer(s)
		}

		return connect(s, cmd.Server)
	case command.Disconnect:
		if !InProgress(s.Connection) {
			return s.logf("Not connected"), nil
		}

		return s, DisconnectEffect{}
	case command.Run:
		if cmd.Tool == "" {
			return selectTool(s, SelectToolRun)
		}

		return runTool(s, cmd.Tool, cmd.Args), nil
	default:
		return s, nil
	}
}

func listServers(s State) State {
	if len(s.Servers) == 0 {
		return s.logf("No servers configured")
	}

	current, _ := ServerOf(s.Connection)
	_, active := s.Connection.(SessionActive)

	s = s.logf("Configured servers:")
	for i, srv := range s.Servers {
		line := fmt.Sprintf("  [%d] %s - %s", i+1, srv.Name, srv.URL)
		if active && srv.Name == current.Name {
			line += " (connected)"
		}

		s = s.logf(line)
	}

	return s
}

func status(s State) State {
	s = s.logf("Status: " + s.Connection.String())

	if active, ok := s.Connection.(SessionActive); ok {
		s = s.logf("  Endpoint: " + active.Endpoint)
		if active.ServerInfo.Name != "" {
			s = s.logf(fmt.Sprintf("  Server: %s %s", active.ServerInfo.Name, active.ServerInfo.Version))
		}
	}

	return s.logf(fmt.Sprintf("  Tools loaded: %d", len(s.Tools)))
}

func selectServer(s State) (State, Effect) {
	if len(s.Servers) == 0 {
		return s.logf("No servers configured"), nil
	}

	s.Mode = Select
	s.Selection = &Selection{
		Kind:       SelectServer,
		Title:      "Select a server",
		Candidates: s.ServerNames(),
	}

	return s, nil
}

func selectTool(s State, kind SelectionKind) (State, Effect) {
	if len(s.Tools) == 0 {
		return s.logf("No tools loaded. Connect to a server and run :mcp tools."), nil
	}

	s.Mode = Select
	s.Selection = &Selection{
		Kind:       kind,
		Title:      "Select a tool",
		Candidates: s.ToolNames(),
	}

	return s, nil
}

func connect(s State, name string) (State, Effect) {
	srv, ok := s.server(name)
	if !ok {
		return s.logf("Error: unknown server: " + name), nil
	}

	return s, ConnectEffect{Server: srv}
}

func showTool(s State, name string) State {
	tool, ok := s.tool(name)
	if !ok {
		return s.logf("Error: unknown tool: " + name)
	}

	return s.logf(schema.Detailed(tool)...)
}

func runTool(s State, name string, args []string) State {
	tool, ok := s.tool(name)
	if !ok {
		return s.logf("Error: unknown tool: " + name)
	}

	arguments, err := schema.ToolArguments(tool, args)
	if err != nil {
		s = s.logf(fmt.Sprintf("Error: invalid arguments for %s: %v", name, err))

		if parsed, perr := schema.Parse(tool.InputSchema); perr == nil {
			s = s.logf("Usage: " + schema.UsageHint(name, parsed))
		}

		return s
	}

	params, err := json.Marshal(struct {
		Name      string `json:"name"`
		Arguments any    `json:"arguments"`
	}{Name: name, Arguments: arguments})
	if err != nil {
		return s.logf("Error: " + err.Error())
	}

	return s.logf(
		fmt.Sprintf("%s %s", mcp.MethodCallTool, params),
		"Tool execution is not supported by this client",
	)
}
