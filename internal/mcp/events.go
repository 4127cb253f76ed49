package mcp

import "encoding/json"

// Event is something the client reports about a connect attempt. Every event
// carries the generation of the attempt that produced it; consumers drop
// events from superseded generations.
type Event interface {
	AttemptGeneration() uint64
}

// Connecting is emitted synchronously by Connect.
type Connecting struct {
	Generation uint64
	Server     ServerDescriptor
}

// StreamOpened reports a successful streaming response; the endpoint event
// is still outstanding.
type StreamOpened struct {
	Generation uint64
}

// EndpointDiscovered carries the resolved session endpoint.
type EndpointDiscovered struct {
	Generation uint64
	Endpoint   string
}

// SessionInitialized reports a completed initialize handshake.
type SessionInitialized struct {
	Generation      uint64
	Endpoint        string
	ProtocolVersion string
	Server          Implementation
}

// ConnectFailed ends an attempt that never became active.
type ConnectFailed struct {
	Generation uint64
	Server     ServerDescriptor
	Err        *ConnectError
}

// Disconnected ends an attempt through teardown.
type Disconnected struct {
	Generation uint64
	Reason     string
}

// ResponseReceived resolves a pending request. Exactly one of Result and Err
// is meaningful.
type ResponseReceived struct {
	Generation uint64
	ID         int64
	Method     string
	Result     json.RawMessage
	Err        *RPCError
}

// RequestFailed resolves a pending request whose dispatch failed or whose
// watchdog expired.
type RequestFailed struct {
	Generation uint64
	ID         int64
	Method     string
	Err        error
}

// RequestCancelled resolves a request that was outstanding at teardown.
type RequestCancelled struct {
	Generation uint64
	ID         int64
	Method     string
}

// ProtocolWarning reports an inbound message that could not be correlated
// or parsed.
type ProtocolWarning struct {
	Generation uint64
	Kind       WarningKind
	Detail     string
}

// NotificationReceived carries a server notification or server request.
type NotificationReceived struct {
	Generation uint64
	Method     string
	Params     json.RawMessage
}

func (e Connecting) AttemptGeneration() uint64           { return e.Generation }
func (e StreamOpened) AttemptGeneration() uint64         { return e.Generation }
func (e EndpointDiscovered) AttemptGeneration() uint64   { return e.Generation }
func (e SessionInitialized) AttemptGeneration() uint64   { return e.Generation }
func (e ConnectFailed) AttemptGeneration() uint64        { return e.Generation }
func (e Disconnected) AttemptGeneration() uint64         { return e.Generation }
func (e ResponseReceived) AttemptGeneration() uint64     { return e.Generation }
func (e RequestFailed) AttemptGeneration() uint64        { return e.Generation }
func (e RequestCancelled) AttemptGeneration() uint64     { return e.Generation }
func (e ProtocolWarning) AttemptGeneration() uint64      { return e.Generation }
func (e NotificationReceived) AttemptGeneration() uint64 { return e.Generation }
