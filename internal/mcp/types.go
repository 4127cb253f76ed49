package mcp

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the MCP revision the client negotiates.
const ProtocolVersion = "2024-11-05"

// ServerDescriptor names one configured server.
type ServerDescriptor struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Implementation identifies a client or server in the initialize exchange.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Tool is a remotely hosted tool as advertised by tools/list.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

type initializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ClientInfo      Implementation `json:"clientInfo"`
}

// InitializeResult is the server's answer to initialize.
type InitializeResult struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
	ServerInfo      Implementation  `json:"serverInfo"`
	Instructions    string          `json:"instructions,omitempty"`
}

// ListToolsResult is the result member of a tools/list response.
type ListToolsResult struct {
	Tools      []Tool `json:"tools"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// DecodeTools decodes a tools/list result.
func DecodeTools(result json.RawMessage) ([]Tool, error) {
	var res ListToolsResult
	if err := json.Unmarshal(result, &res); err != nil {
		return nil, fmt.Errorf("decode tools/list result: %w", err)
	}

	return res.Tools, nil
}
