// Package mcp implements a Model Context Protocol client for the SSE transport.
//
// A Client owns at most one session at a time. Connect starts a new attempt,
// identified by a strictly increasing generation, and supersedes whatever
// session existed before. All progress is reported through the emit function
// given to NewClient; the client never blocks on its consumer.
package mcp

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/musher-dev/mcpterm/internal/buildinfo"
	"github.com/musher-dev/mcpterm/internal/observability"
)

const (
	// DefaultConnectTimeout bounds discovery plus the initialize handshake.
	DefaultConnectTimeout = 10 * time.Second
	// DefaultRequestTimeout bounds each call after the session is active.
	DefaultRequestTimeout = 30 * time.Second
)

// Client is an MCP client for servers speaking the SSE transport.
type Client struct {
	emit           func(Event)
	httpClient     *http.Client
	logger         *slog.Logger
	tracer         trace.Tracer
	clientInfo     Implementation
	connectTimeout time.Duration
	requestTimeout time.Duration

	mu         sync.Mutex
	generation uint64
	current    *session
	closed     bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. It must not set a total request
// timeout, since the event stream stays open for the life of the session.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithConnectTimeout sets the connect watchdog. Zero disables it.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.connectTimeout = d
	}
}

// WithRequestTimeout sets the per-request watchdog. Zero disables it.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = d
	}
}

// WithClientInfo sets the implementation reported during initialize.
func WithClientInfo(info Implementation) Option {
	return func(c *Client) {
		c.clientInfo = info
	}
}

// WithTracer sets the tracer used for session and request spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// NewClient creates a client that reports through emit. emit must not block.
func NewClient(emit func(Event), opts ...Option) *Client {
	c := &Client{
		emit: emit,
		httpClient: &http.Client{
			Transport: observability.HTTPTransport(nil),
		},
		logger:         slog.Default(),
		tracer:         observability.Tracer("mcpterm.mcp"),
		clientInfo:     Implementation{Name: "mcpterm", Version: buildinfo.Version},
		connectTimeout: DefaultConnectTimeout,
		requestTimeout: DefaultRequestTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With(slog.String("component", "mcp"))

	return c
}

// Connect starts a new connect attempt and returns its generation without
// waiting for the network. Any existing session is torn down first. After
// Close, Connect returns 0 and does nothing.
func (c *Client) Connect(server ServerDescriptor) uint64 {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return 0
	}

	c.generation++
	gen := c.generation
	prev := c.current
	s := newSession(c, gen, server)
	c.current = s

	c.mu.Unlock()

	if prev != nil {
		prev.teardown("superseded by a new connection")
	}

	c.emit(Connecting{Generation: gen, Server: server})

	go s.run()

	return gen
}

// Disconnect tears down the current session, cancelling its outstanding
// requests. It is safe to call at any time and any number of times.
func (c *Client) Disconnect() {
	c.mu.Lock()
	s := c.current
	c.current = nil
	c.mu.Unlock()

	if s != nil {
		s.teardown("disconnected")
	}
}

// Close disconnects and refuses further connect attempts.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.Disconnect()
}

// Generation reports the generation of the most recent connect attempt.
func (c *Client) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.generation
}

// SendRequest dispatches a call on the active session and returns its id.
// Calls made before the session is initialized fail with ErrSessionNotReady;
// they are never queued.
func (c *Client) SendRequest(method string, params any) (int64, error) {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()

	if s == nil || !s.isActive() {
		return 0, ErrSessionNotReady
	}

	return s.send(method, params)
}

// ListTools requests the server's tool list. The result arrives as a
// ResponseReceived event for MethodListTools.
func (c *Client) ListTools() (int64, error) {
	return c.SendRequest(MethodListTools, struct{}{})
}
