// Package errors provides structured CLI error types for mcpterm.
//
// CLIError wraps errors with user-facing messages, hints, and exit codes
// to provide consistent, actionable error output across all commands.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Exit codes for CLI errors.
const (
	ExitSuccess  = 0  // Successful execution
	ExitGeneral  = 1  // General error
	ExitNetwork  = 3  // Network/server error
	ExitConfig   = 4  // Configuration error
	ExitTimeout  = 5  // Connection timeout
	ExitTerminal = 6  // Terminal unavailable or setup failure
	ExitUsage    = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	// Message is the primary error message shown to the user.
	Message string

	// Hint provides actionable guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// New creates a new CLIError with the given message and exit code.
func New(code int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an existing error with a CLIError.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// Is is a passthrough to errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// --- Common error constructors ---

// ConfigInvalid returns an error for a config file that cannot be used.
func ConfigInvalid(path string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Invalid configuration in %s", path),
		Hint:    `Check the JSON syntax; each mcp_servers entry needs a unique "name" and an http(s) "url"`,
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// ConfigNotFound returns an error for an explicitly named config file that
// does not exist.
func ConfigNotFound(path string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Config file not found: %s", path),
		Hint:    "Create the file or omit --config to use ./config.json or the user config directory",
		Code:    ExitConfig,
	}
}

// ConfigFailed returns a generic configuration error.
func ConfigFailed(operation string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s", operation),
		Hint:    "Run 'mcpterm paths' to see where configuration is read from",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// TerminalRequired returns an error when the interactive client is started
// without a terminal.
func TerminalRequired() *CLIError {
	return &CLIError{
		Message: "mcpterm needs an interactive terminal",
		Hint:    "Run it from a terminal, or use 'mcpterm servers' and 'mcpterm doctor' in scripts",
		Code:    ExitTerminal,
	}
}

// TerminalSetupFailed returns an error when the terminal UI cannot start.
func TerminalSetupFailed(cause error) *CLIError {
	return &CLIError{
		Message: "Failed to start the terminal interface",
		Hint:    "Check that TERM is set and the terminal supports raw mode",
		Cause:   cause,
		Code:    ExitTerminal,
	}
}

// ServerNotFound returns an error for an unknown server name.
func ServerNotFound(name string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Server not found: %s", name),
		Hint:    "Run 'mcpterm servers' to see configured servers",
		Code:    ExitConfig,
	}
}

// NoServers returns an error when a command needs configured servers.
func NoServers() *CLIError {
	return &CLIError{
		Message: "No MCP servers configured",
		Hint:    `Add {"mcp_servers": [{"name": "local", "url": "http://localhost:8000/sse"}]} to config.json`,
		Code:    ExitConfig,
	}
}

// ServerUnreachable returns an error for a failed connection attempt. It
// detects common failure patterns and provides specific hints.
func ServerUnreachable(name string, cause error) *CLIError {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}

	hint := "Check that the server is running and the URL points at its SSE endpoint"

	switch {
	case containsAny(detail, "connection refused"):
		hint = "Nothing is listening at the configured address; start the server or fix the URL"
	case containsAny(detail, "no such host", "server misbehaving"):
		hint = "The host name could not be resolved; check the URL in your config"
	case containsAny(detail, "certificate", "x509", "tls"):
		hint = "TLS verification failed; check the server certificate or use the right scheme"
	case containsAny(detail, "status 404"):
		hint = "The server answered 404; the URL probably needs the /sse path"
	case containsAny(detail, "status 401", "status 403"):
		hint = "The server rejected the request; authenticated servers are not supported"
	case containsAny(detail, "no endpoint", "malformed endpoint"):
		hint = "The server did not announce a usable session endpoint; is it an MCP SSE server?"
	}

	return &CLIError{
		Message: fmt.Sprintf("Cannot connect to %s", name),
		Hint:    hint,
		Cause:   cause,
		Code:    ExitNetwork,
	}
}

// ConnectTimedOut returns an error when a connection attempt exceeds its
// watchdog.
func ConnectTimedOut(name string, timeout time.Duration) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Connection to %s timed out after %s", name, timeout),
		Hint:    "Raise mcp.connect_timeout in config.json or check the server's responsiveness",
		Code:    ExitTimeout,
	}
}

// containsAny checks if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}

	return false
}
