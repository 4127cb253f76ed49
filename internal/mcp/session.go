package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/musher-dev/mcpterm/internal/buildinfo"
)

const (
	eventEndpoint = "endpoint"
	eventMessage  = "message"

	maxResponseBody = 4 << 20
)

var errEmptyEndpoint = errors.New("empty endpoint payload")

// session is one connect attempt. Its context scopes the event stream and
// every POST; teardown cancels it exactly once.
type session struct {
	client     *Client
	generation uint64
	server     ServerDescriptor
	logger     *slog.Logger
	pending    *PendingTable
	nextID     atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc

	// mu guards the fields below and serializes emission, so that nothing is
	// emitted for this generation after its final event.
	mu       sync.Mutex
	endpoint *url.URL
	active   bool
	done     bool
	watchdog *time.Timer
	timers   map[int64]*time.Timer
}

func newSession(c *Client, gen uint64, server ServerDescriptor) *session {
	ctx, cancel := context.WithCancel(context.Background())

	return &session{
		client:     c,
		generation: gen,
		server:     server,
		logger: c.logger.With(
			slog.String("mcp.server", server.Name),
			slog.Uint64("mcp.generation", gen),
		),
		pending: NewPendingTable(),
		ctx:     ctx,
		cancel:  cancel,
		timers:  make(map[int64]*time.Timer),
	}
}

// run opens the event stream and reads it until the session ends.
func (s *session) run() {
	ctx, span := s.client.tracer.Start(s.ctx, "mcp.session",
		trace.WithAttributes(
			attribute.String("mcp.server", s.server.Name),
			attribute.Int64("mcp.generation", int64(s.generation)), //nolint:gosec // generation fits
		),
	)
	defer span.End()

	s.armWatchdog()

	base, err := url.Parse(s.server.URL)
	if err != nil {
		s.fail(&ConnectError{Kind: ConnectHTTP, Detail: "invalid server url", Err: err})
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		s.fail(&ConnectError{Kind: ConnectHTTP, Detail: "build stream request", Err: err})
		return
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	s.logger.Debug("opening event stream", slog.String("url", base.String()))

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		s.fail(&ConnectError{Kind: ConnectHTTP, Detail: "open stream", Err: err})
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := readSnippet(resp.Body)
		_ = resp.Body.Close()

		s.fail(&ConnectError{Kind: ConnectHTTP, StatusCode: resp.StatusCode, Detail: detail})
		span.SetStatus(codes.Error, "stream rejected")

		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !isMediaType(ct, "text/event-stream") {
		_ = resp.Body.Close()

		s.fail(&ConnectError{Kind: ConnectHTTP, Detail: "unexpected content type " + ct})

		return
	}

	s.emit(StreamOpened{Generation: s.generation})

	dec := ssestream.NewDecoder(resp)
	defer dec.Close()

	for dec.Next() {
		ev := dec.Event()
		s.handleEvent(base, ev.Type, ev.Data)

		if s.isDone() {
			return
		}
	}

	if s.isDone() {
		return
	}

	if err := dec.Err(); err != nil {
		s.logger.Debug("event stream ended with error", slog.String("error", err.Error()))
	}

	switch {
	case !s.hasEndpoint():
		s.fail(&ConnectError{Kind: ConnectNoEndpoint, Detail: "stream closed before endpoint event"})
	case !s.isActive():
		s.fail(&ConnectError{Kind: ConnectInitialize, Detail: "stream closed during handshake"})
	default:
		s.teardown("stream closed by server")
	}
}

func (s *session) handleEvent(base *url.URL, eventType string, data []byte) {
	if eventType == eventEndpoint {
		s.handleEndpoint(base, data)
		return
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return
	}

	switch eventType {
	case "", eventMessage:
		s.dispatch(data)
	default:
		s.logger.Debug("ignoring stream event", slog.String("event", eventType))
	}
}

func (s *session) handleEndpoint(base *url.URL, data []byte) {
	if s.hasEndpoint() {
		s.logger.Warn("ignoring repeated endpoint event")
		return
	}

	raw := strings.TrimSpace(string(data))

	endpoint, err := resolveEndpoint(base, raw)
	if err != nil {
		s.fail(&ConnectError{Kind: ConnectMalformedEndpoint, Detail: fmt.Sprintf("%q", raw), Err: err})
		return
	}

	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}

	s.endpoint = endpoint
	s.client.emit(EndpointDiscovered{Generation: s.generation, Endpoint: endpoint.String()})
	s.mu.Unlock()

	s.logger.Info("session endpoint discovered", slog.String("endpoint", endpoint.String()))

	params := initializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    map[string]any{},
		ClientInfo:      s.client.clientInfo,
	}

	if _, err := s.send(MethodInitialize, params); err != nil {
		s.fail(&ConnectError{Kind: ConnectInitialize, Err: err})
	}
}

// resolveEndpoint resolves the endpoint event payload against the server URL.
func resolveEndpoint(base *url.URL, raw string) (*url.URL, error) {
	if raw == "" {
		return nil, errEmptyEndpoint
	}

	if strings.ContainsAny(raw, " \t\r\n") {
		return nil, errors.New("endpoint contains whitespace")
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil, fmt.Errorf("unsupported endpoint scheme %q", resolved.Scheme)
	}

	if resolved.Host == "" {
		return nil, errors.New("endpoint has no host")
	}

	return resolved, nil
}

// send records a pending request and posts it asynchronously.
func (s *session) send(method string, params any) (int64, error) {
	s.mu.Lock()
	endpoint := s.endpoint
	done := s.done
	s.mu.Unlock()

	if done || endpoint == nil {
		return 0, ErrSessionNotReady
	}

	id := s.nextID.Add(1)

	body, err := json.Marshal(NewRequest(id, method, params))
	if err != nil {
		return 0, fmt.Errorf("marshal %s request: %w", method, err)
	}

	if err := s.pending.Insert(PendingRequest{ID: id, Method: method, IssuedAt: time.Now()}); err != nil {
		if errors.Is(err, ErrTableClosed) {
			return 0, ErrSessionNotReady
		}

		return 0, err
	}

	if method != MethodInitialize {
		s.armRequestTimer(id)
	}

	go s.post(id, method, endpoint, body)

	return id, nil
}

func (s *session) post(id int64, method string, endpoint *url.URL, body []byte) {
	ctx, span := s.client.tracer.Start(s.ctx, "mcp.request",
		trace.WithAttributes(
			attribute.String("rpc.method", method),
			attribute.Int64("rpc.id", id),
			attribute.String("mcp.server", s.server.Name),
		),
	)
	defer span.End()

	resp, err := s.postJSON(ctx, endpoint, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "post failed")
		s.failRequest(id, fmt.Errorf("post %s: %w", method, err))

		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := unexpectedStatus(method, resp.StatusCode, resp.Body)
		span.SetStatus(codes.Error, "unexpected status")
		s.failRequest(id, err)

		return
	}

	// 202 Accepted: the response will arrive on the event stream.
	if !isMediaType(resp.Header.Get("Content-Type"), "application/json") {
		return
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		s.failRequest(id, fmt.Errorf("read %s response: %w", method, err))
		return
	}

	if len(bytes.TrimSpace(payload)) > 0 {
		s.dispatch(payload)
	}
}

// notify posts a notification; failures are only logged.
func (s *session) notify(method string, params any) {
	s.mu.Lock()
	endpoint := s.endpoint
	s.mu.Unlock()

	if endpoint == nil {
		return
	}

	body, err := json.Marshal(Notification{JSONRPC: jsonRPCVersion, Method: method, Params: params})
	if err != nil {
		s.logger.Warn("marshal notification failed", slog.String("method", method), slog.String("error", err.Error()))
		return
	}

	resp, err := s.postJSON(s.ctx, endpoint, body)
	if err != nil {
		if !s.isDone() {
			s.logger.Warn("notification failed", slog.String("method", method), slog.String("error", err.Error()))
		}

		return
	}

	_ = resp.Body.Close()
}

func (s *session) postJSON(ctx context.Context, endpoint *url.URL, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// dispatch demultiplexes one inbound payload.
func (s *session) dispatch(data []byte) {
	msgs, errs := decodeMessages(data)
	for _, err := range errs {
		s.emit(ProtocolWarning{Generation: s.generation, Kind: WarningMalformedMessage, Detail: err.Error()})
	}

	for i := range msgs {
		s.dispatchOne(&msgs[i])
	}
}

func (s *session) dispatchOne(m *message) {
	if m.Method != "" {
		s.emit(NotificationReceived{Generation: s.generation, Method: m.Method, Params: m.Params})
		return
	}

	id, ok := m.numericID()
	if !ok {
		s.emit(ProtocolWarning{
			Generation: s.generation,
			Kind:       WarningUnmatchedResponse,
			Detail:     "response id " + string(m.ID),
		})

		return
	}

	req, ok := s.pending.Resolve(id)
	if !ok {
		s.emit(ProtocolWarning{
			Generation: s.generation,
			Kind:       WarningUnmatchedResponse,
			Detail:     fmt.Sprintf("no pending request with id %d", id),
		})

		return
	}

	s.stopRequestTimer(id)

	if req.Method == MethodInitialize {
		s.completeInitialize(m)
		return
	}

	s.logger.Debug("response received",
		slog.Int64("rpc.id", id),
		slog.String("rpc.method", req.Method),
		slog.Duration("latency", time.Since(req.IssuedAt)),
	)

	s.emit(ResponseReceived{
		Generation: s.generation,
		ID:         id,
		Method:     req.Method,
		Result:     m.Result,
		Err:        m.Error,
	})
}

func (s *session) completeInitialize(m *message) {
	if m.Error != nil {
		s.fail(&ConnectError{Kind: ConnectInitialize, Err: m.Error})
		return
	}

	var res InitializeResult
	if err := json.Unmarshal(m.Result, &res); err != nil {
		s.fail(&ConnectError{Kind: ConnectInitialize, Detail: "decode initialize result", Err: err})
		return
	}

	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}

	s.active = true
	s.stopWatchdogLocked()
	s.client.emit(SessionInitialized{
		Generation:      s.generation,
		Endpoint:        s.endpoint.String(),
		ProtocolVersion: res.ProtocolVersion,
		Server:          res.ServerInfo,
	})
	s.mu.Unlock()

	s.logger.Info("session initialized",
		slog.String("server.name", res.ServerInfo.Name),
		slog.String("server.version", res.ServerInfo.Version),
		slog.String("protocol.version", res.ProtocolVersion),
	)

	go s.notify(MethodInitialized, nil)
}

// failRequest resolves id with err if it is still pending.
func (s *session) failRequest(id int64, err error) {
	req, ok := s.pending.Resolve(id)
	if !ok {
		return
	}

	s.stopRequestTimer(id)

	if req.Method == MethodInitialize {
		s.fail(&ConnectError{Kind: ConnectInitialize, Err: err})
		return
	}

	s.logger.Warn("request failed",
		slog.Int64("rpc.id", id),
		slog.String("rpc.method", req.Method),
		slog.String("error", err.Error()),
	)

	s.emit(RequestFailed{Generation: s.generation, ID: id, Method: req.Method, Err: err})
}

// fail ends an attempt that never became active.
func (s *session) fail(err *ConnectError) {
	if s.isDone() {
		return
	}

	s.logger.Warn("connect failed", slog.String("error", err.Error()))
	s.close(ConnectFailed{Generation: s.generation, Server: s.server, Err: err})
}

// teardown ends the session with a Disconnected event.
func (s *session) teardown(reason string) {
	s.close(Disconnected{Generation: s.generation, Reason: reason})
}

// close releases the session exactly once: it cancels the stream and every
// POST, resolves each pending request as cancelled and emits final last.
func (s *session) close(final Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}

	s.done = true
	s.active = false
	s.stopWatchdogLocked()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}

	s.cancel()

	for _, req := range s.pending.CancelAll() {
		s.client.emit(RequestCancelled{Generation: s.generation, ID: req.ID, Method: req.Method})
	}

	s.client.emit(final)
}

// emit forwards ev unless the session has already ended.
func (s *session) emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}

	s.client.emit(ev)
}

func (s *session) armWatchdog() {
	d := s.client.connectTimeout
	if d <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done || s.active {
		return
	}

	s.watchdog = time.AfterFunc(d, func() {
		if s.isActive() {
			return
		}

		s.fail(&ConnectError{Kind: ConnectTimeout, Detail: fmt.Sprintf("no session within %s", d)})
	})
}

func (s *session) stopWatchdogLocked() {
	if s.watchdog != nil {
		s.watchdog.Stop()
		s.watchdog = nil
	}
}

func (s *session) armRequestTimer(id int64) {
	d := s.client.requestTimeout
	if d <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}

	s.timers[id] = time.AfterFunc(d, func() {
		s.failRequest(id, ErrRequestTimeout)
	})
}

func (s *session) stopRequestTimer(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *session) isActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

func (s *session) isDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.done
}

func (s *session) hasEndpoint() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.endpoint != nil
}

func isMediaType(header, want string) bool {
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}

	return strings.EqualFold(mt, want)
}

// unexpectedStatus creates a formatted error from an unexpected HTTP status code.
func unexpectedStatus(operation string, statusCode int, body io.Reader) error {
	return fmt.Errorf("%s failed with status %d: %s", operation, statusCode, readSnippet(body))
}

func readSnippet(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil {
		return fmt.Sprintf("(failed to read body: %v)", err)
	}

	return strings.TrimSpace(string(data))
}
