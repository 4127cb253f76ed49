package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const jsonRPCVersion = "2.0"

// Method names used by the client.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"
	MethodListTools   = "tools/list"
	MethodCallTool    = "tools/call"
)

// Request is an outbound JSON-RPC 2.0 call.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// NewRequest builds a request envelope for id and method.
func NewRequest(id int64, method string, params any) Request {
	return Request{JSONRPC: jsonRPCVersion, ID: id, Method: method, Params: params}
}

// Notification is a JSON-RPC 2.0 message without an id.
type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// RPCError is the error member of a JSON-RPC response.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// message is any inbound JSON-RPC payload: a response, a notification or a
// server-initiated request.
type message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

var (
	errEmptyMessage = errors.New("empty message")
	errEmptyBatch   = errors.New("empty batch")
)

// decodeMessages parses a single message or a batch. Valid batch members
// are returned alongside one error per invalid member; a payload that is
// not JSON at all yields only an error.
func decodeMessages(data []byte) ([]message, []error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, []error{errEmptyMessage}
	}

	if trimmed[0] != '[' {
		var m message
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return nil, []error{fmt.Errorf("decode message: %w", err)}
		}

		if err := m.validate(); err != nil {
			return nil, []error{err}
		}

		return []message{m}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, []error{fmt.Errorf("decode batch: %w", err)}
	}

	if len(raw) == 0 {
		return nil, []error{errEmptyBatch}
	}

	var (
		msgs []message
		errs []error
	)

	for i, member := range raw {
		var m message
		if err := json.Unmarshal(member, &m); err != nil {
			errs = append(errs, fmt.Errorf("decode batch member %d: %w", i, err))
			continue
		}

		if err := m.validate(); err != nil {
			errs = append(errs, fmt.Errorf("batch member %d: %w", i, err))
			continue
		}

		msgs = append(msgs, m)
	}

	return msgs, errs
}

func (m *message) validate() error {
	if m.JSONRPC != jsonRPCVersion {
		return fmt.Errorf("unsupported jsonrpc version %q", m.JSONRPC)
	}

	if m.Method == "" && !m.hasID() {
		return errors.New("message has neither id nor method")
	}

	return nil
}

func (m *message) hasID() bool {
	return len(m.ID) > 0 && !bytes.Equal(m.ID, []byte("null"))
}

// numericID returns the id when it is a JSON integer. The client only ever
// issues integer ids, so anything else cannot match a pending request.
func (m *message) numericID() (int64, bool) {
	if !m.hasID() {
		return 0, false
	}

	var id int64
	if err := json.Unmarshal(m.ID, &id); err != nil {
		return 0, false
	}

	return id, true
}
