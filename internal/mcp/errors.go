package mcp

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotReady rejects calls issued before the session is initialized.
	ErrSessionNotReady = errors.New("session not ready")
	// ErrCancelled resolves requests that were outstanding at teardown.
	ErrCancelled = errors.New("request cancelled")
	// ErrRequestTimeout resolves requests that outlived the request watchdog.
	ErrRequestTimeout = errors.New("request timed out")
)

// ConnectErrorKind classifies why a connect attempt failed.
type ConnectErrorKind int

const (
	// ConnectHTTP covers transport errors and non-success stream responses.
	ConnectHTTP ConnectErrorKind = iota
	// ConnectNoEndpoint means the stream ended before an endpoint event.
	ConnectNoEndpoint
	// ConnectMalformedEndpoint means the endpoint event payload was unusable.
	ConnectMalformedEndpoint
	// ConnectTimeout means the session was not ready within the connect watchdog.
	ConnectTimeout
	// ConnectInitialize means the initialize handshake failed.
	ConnectInitialize
)

func (k ConnectErrorKind) String() string {
	switch k {
	case ConnectHTTP:
		return "http error"
	case ConnectNoEndpoint:
		return "no endpoint"
	case ConnectMalformedEndpoint:
		return "malformed endpoint"
	case ConnectTimeout:
		return "timeout"
	case ConnectInitialize:
		return "initialize failed"
	default:
		return "unknown"
	}
}

// ConnectError describes a failed connect attempt.
type ConnectError struct {
	Kind       ConnectErrorKind
	StatusCode int
	Detail     string
	Err        error
}

func (e *ConnectError) Error() string {
	msg := e.Kind.String()

	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}

	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// WarningKind classifies recoverable protocol anomalies.
type WarningKind int

const (
	// WarningUnmatchedResponse is a response whose id matches no pending request.
	WarningUnmatchedResponse WarningKind = iota
	// WarningMalformedMessage is an inbound payload that is not valid JSON-RPC.
	WarningMalformedMessage
)

func (k WarningKind) String() string {
	switch k {
	case WarningUnmatchedResponse:
		return "unmatched response"
	case WarningMalformedMessage:
		return "malformed message"
	default:
		return "unknown warning"
	}
}
