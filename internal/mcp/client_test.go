package mcp

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 3 * time.Second

// fakeServer is a minimal MCP server speaking the SSE transport.
type fakeServer struct {
	srv *httptest.Server

	// endpoint is the payload of the endpoint event; noEndpoint skips it.
	endpoint    string
	noEndpoint  bool
	streamCode  int
	silent      bool
	replyInBody bool
	hold        map[string]bool

	frames    chan string
	closeOnce sync.Once

	mu       sync.Mutex
	received []string
}

func newFakeServer(t *testing.T, configure func(*fakeServer)) *fakeServer {
	t.Helper()

	f := &fakeServer{
		endpoint:   "/messages?sessionId=test",
		streamCode: http.StatusOK,
		hold:       map[string]bool{},
		frames:     make(chan string, 32),
	}

	if configure != nil {
		configure(f)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /sse", f.handleStream)
	mux.HandleFunc("POST /messages", f.handleMessage)

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)

	return f
}

func (f *fakeServer) descriptor() ServerDescriptor {
	return ServerDescriptor{Name: "fake", URL: f.srv.URL + "/sse"}
}

func (f *fakeServer) handleStream(w http.ResponseWriter, r *http.Request) {
	if f.streamCode != http.StatusOK {
		http.Error(w, "unavailable", f.streamCode)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "no flusher", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if f.noEndpoint && !f.silent {
		return
	}

	if !f.noEndpoint {
		fmt.Fprintf(w, "event: endpoint\ndata: %s\n\n", f.endpoint)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-f.frames:
			if !ok {
				return
			}

			fmt.Fprint(w, frame)
			flusher.Flush()
		}
	}
}

func (f *fakeServer) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     *int64 `json:"id"`
		Method string `json:"method"`
	}

	body, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.received = append(f.received, req.Method)
	f.mu.Unlock()

	if req.ID == nil || f.hold[req.Method] {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	payload := responseFor(*req.ID, req.Method)

	if f.replyInBody {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)

		return
	}

	f.push(fmt.Sprintf("event: message\ndata: %s\n\n", payload))
	w.WriteHeader(http.StatusAccepted)
}

func (f *fakeServer) push(frame string) {
	f.frames <- frame
}

func (f *fakeServer) closeStream() {
	f.closeOnce.Do(func() { close(f.frames) })
}

func (f *fakeServer) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.received...)
}

func responseFor(id int64, method string) []byte {
	var result string

	switch method {
	case MethodInitialize:
		result = `{"protocolVersion":"2024-11-05","capabilities":{"tools":{}},"serverInfo":{"name":"fake","version":"1.2.3"}}`
	case MethodListTools:
		result = `{"tools":[{"name":"echo","description":"Echo input","inputSchema":{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}}]}`
	default:
		return []byte(fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"Method not found"}}`, id))
	}

	return []byte(fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"result":%s}`, id, result))
}

// recorder collects emitted events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Event(nil), r.events...)
}

func waitFor[T Event](t *testing.T, r *recorder, match func(T) bool) T {
	t.Helper()

	var found T

	require.Eventually(t, func() bool {
		for _, ev := range r.snapshot() {
			if e, ok := ev.(T); ok && (match == nil || match(e)) {
				found = e
				return true
			}
		}

		return false
	}, waitTimeout, 5*time.Millisecond, "waiting for %T", found)

	return found
}

func countOf[T Event](r *recorder) int {
	n := 0

	for _, ev := range r.snapshot() {
		if _, ok := ev.(T); ok {
			n++
		}
	}

	return n
}

func indexOf(r *recorder, match func(Event) bool) int {
	for i, ev := range r.snapshot() {
		if match(ev) {
			return i
		}
	}

	return -1
}

func newTestClient(t *testing.T, f *fakeServer, opts ...Option) (*Client, *recorder) {
	t.Helper()

	rec := &recorder{}
	base := []Option{
		WithHTTPClient(f.srv.Client()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}

	c := NewClient(rec.emit, append(base, opts...)...)
	t.Cleanup(c.Close)

	return c, rec
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)

	return u
}

func TestClient_HandshakeAndListTools(t *testing.T) {
	f := newFakeServer(t, nil)
	c, rec := newTestClient(t, f)

	gen := c.Connect(f.descriptor())
	assert.Equal(t, uint64(1), gen)

	first := rec.snapshot()[0]
	assert.Equal(t, Connecting{Generation: 1, Server: f.descriptor()}, first, "Connecting is emitted before Connect returns")

	discovered := waitFor[EndpointDiscovered](t, rec, nil)
	assert.Equal(t, f.srv.URL+"/messages?sessionId=test", discovered.Endpoint)

	ready := waitFor[SessionInitialized](t, rec, nil)
	assert.Equal(t, gen, ready.Generation)
	assert.Equal(t, "fake", ready.Server.Name)
	assert.Equal(t, "1.2.3", ready.Server.Version)
	assert.Equal(t, ProtocolVersion, ready.ProtocolVersion)

	assert.Less(t,
		indexOf(rec, func(ev Event) bool { _, ok := ev.(StreamOpened); return ok }),
		indexOf(rec, func(ev Event) bool { _, ok := ev.(EndpointDiscovered); return ok }),
	)

	id, err := c.ListTools()
	require.NoError(t, err)
	assert.Equal(t, int64(2), id, "initialize takes id 1")

	resp := waitFor[ResponseReceived](t, rec, nil)
	assert.Equal(t, id, resp.ID)
	assert.Equal(t, MethodListTools, resp.Method)
	assert.Nil(t, resp.Err)

	tools, err := DecodeTools(resp.Result)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "echo", tools[0].Name)

	require.Eventually(t, func() bool { return len(f.methods()) == 3 }, waitTimeout, 5*time.Millisecond)

	methods := f.methods()
	assert.Equal(t, MethodInitialize, methods[0])
	assert.ElementsMatch(t, []string{MethodInitialize, MethodInitialized, MethodListTools}, methods)
}

func TestClient_ResponsesInPostBody(t *testing.T) {
	f := newFakeServer(t, func(f *fakeServer) { f.replyInBody = true })
	c, rec := newTestClient(t, f)

	c.Connect(f.descriptor())
	waitFor[SessionInitialized](t, rec, nil)

	_, err := c.ListTools()
	require.NoError(t, err)

	resp := waitFor[ResponseReceived](t, rec, nil)
	assert.Equal(t, MethodListTools, resp.Method)
}

func TestClient_RPCErrorResponse(t *testing.T) {
	f := newFakeServer(t, nil)
	c, rec := newTestClient(t, f)

	c.Connect(f.descriptor())
	waitFor[SessionInitialized](t, rec, nil)

	_, err := c.SendRequest("resources/list", struct{}{})
	require.NoError(t, err)

	resp := waitFor[ResponseReceived](t, rec, nil)
	require.NotNil(t, resp.Err)
	assert.Equal(t, -32601, resp.Err.Code)
}

func TestClient_ConnectFailures(t *testing.T) {
	tests := []struct {
		name      string
		configure func(*fakeServer)
		opts      []Option
		wantKind  ConnectErrorKind
		wantCode  int
	}{
		{
			name:      "stream closes before endpoint",
			configure: func(f *fakeServer) { f.noEndpoint = true },
			wantKind:  ConnectNoEndpoint,
		},
		{
			name:      "empty endpoint payload",
			configure: func(f *fakeServer) { f.endpoint = "" },
			wantKind:  ConnectMalformedEndpoint,
		},
		{
			name:      "endpoint with bad scheme",
			configure: func(f *fakeServer) { f.endpoint = "ftp://elsewhere/x" },
			wantKind:  ConnectMalformedEndpoint,
		},
		{
			name:      "non-success stream response",
			configure: func(f *fakeServer) { f.streamCode = http.StatusServiceUnavailable },
			wantKind:  ConnectHTTP,
			wantCode:  http.StatusServiceUnavailable,
		},
		{
			name:      "no endpoint within watchdog",
			configure: func(f *fakeServer) { f.noEndpoint = true; f.silent = true },
			opts:      []Option{WithConnectTimeout(100 * time.Millisecond)},
			wantKind:  ConnectTimeout,
		},
		{
			name:      "initialize never answered",
			configure: func(f *fakeServer) { f.hold[MethodInitialize] = true },
			opts:      []Option{WithConnectTimeout(100 * time.Millisecond)},
			wantKind:  ConnectTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeServer(t, tt.configure)
			c, rec := newTestClient(t, f, tt.opts...)

			gen := c.Connect(f.descriptor())

			failed := waitFor[ConnectFailed](t, rec, nil)
			assert.Equal(t, gen, failed.Generation)
			assert.Equal(t, f.descriptor(), failed.Server)
			require.NotNil(t, failed.Err)
			assert.Equal(t, tt.wantKind, failed.Err.Kind, failed.Err.Error())

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failed.Err.StatusCode)
			}

			c.Disconnect()

			assert.Equal(t, 1, countOf[ConnectFailed](rec))
			assert.Equal(t, 0, countOf[Disconnected](rec), "a failed attempt has already been torn down")
			assert.Equal(t, 0, countOf[SessionInitialized](rec))
		})
	}
}

func TestClient_ConnectRefused(t *testing.T) {
	f := newFakeServer(t, nil)
	c, rec := newTestClient(t, f)

	addr := f.srv.URL
	f.srv.Close()

	c.Connect(ServerDescriptor{Name: "gone", URL: addr + "/sse"})

	failed := waitFor[ConnectFailed](t, rec, nil)
	assert.Equal(t, ConnectHTTP, failed.Err.Kind)
	assert.Error(t, failed.Err.Unwrap())
}

func TestClient_SendBeforeActive(t *testing.T) {
	f := newFakeServer(t, func(f *fakeServer) { f.hold[MethodInitialize] = true })
	c, rec := newTestClient(t, f)

	_, err := c.ListTools()
	assert.ErrorIs(t, err, ErrSessionNotReady)

	c.Connect(f.descriptor())
	waitFor[EndpointDiscovered](t, rec, nil)

	_, err = c.ListTools()
	assert.ErrorIs(t, err, ErrSessionNotReady, "calls before initialize completes are rejected, not queued")
}

func TestClient_DisconnectCancelsPending(t *testing.T) {
	f := newFakeServer(t, func(f *fakeServer) { f.hold[MethodListTools] = true })
	c, rec := newTestClient(t, f)

	gen := c.Connect(f.descriptor())
	waitFor[SessionInitialized](t, rec, nil)

	id, err := c.ListTools()
	require.NoError(t, err)

	c.Disconnect()
	c.Disconnect()

	events := rec.snapshot()
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, RequestCancelled{Generation: gen, ID: id, Method: MethodListTools}, events[len(events)-2])
	assert.Equal(t, Disconnected{Generation: gen, Reason: "disconnected"}, events[len(events)-1])

	assert.Equal(t, 1, countOf[Disconnected](rec), "teardown happens exactly once")
	assert.Equal(t, 1, countOf[RequestCancelled](rec))

	_, err = c.ListTools()
	assert.ErrorIs(t, err, ErrSessionNotReady)

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, rec.snapshot(), len(events), "nothing is emitted after the final event")
}

func TestClient_RequestTimeout(t *testing.T) {
	f := newFakeServer(t, func(f *fakeServer) { f.hold[MethodListTools] = true })
	c, rec := newTestClient(t, f, WithRequestTimeout(100*time.Millisecond))

	c.Connect(f.descriptor())
	waitFor[SessionInitialized](t, rec, nil)

	id, err := c.ListTools()
	require.NoError(t, err)

	failed := waitFor[RequestFailed](t, rec, nil)
	assert.Equal(t, id, failed.ID)
	assert.ErrorIs(t, failed.Err, ErrRequestTimeout)

	c.Disconnect()
	assert.Equal(t, 0, countOf[RequestCancelled](rec), "a timed out request is not cancelled again")
}

func TestClient_ProtocolWarnings(t *testing.T) {
	f := newFakeServer(t, nil)
	c, rec := newTestClient(t, f)

	c.Connect(f.descriptor())
	waitFor[SessionInitialized](t, rec, nil)

	f.push("event: message\ndata: {\"jsonrpc\":\"2.0\",\"id\":999,\"result\":{}}\n\n")
	unmatched := waitFor[ProtocolWarning](t, rec, func(w ProtocolWarning) bool {
		return w.Kind == WarningUnmatchedResponse
	})
	assert.Contains(t, unmatched.Detail, "999")

	f.push("event: message\ndata: not json\n\n")
	waitFor[ProtocolWarning](t, rec, func(w ProtocolWarning) bool {
		return w.Kind == WarningMalformedMessage
	})

	f.push("event: message\ndata: {\"jsonrpc\":\"2.0\",\"method\":\"notifications/tools/list_changed\"}\n\n")
	note := waitFor[NotificationReceived](t, rec, nil)
	assert.Equal(t, "notifications/tools/list_changed", note.Method)
}

func TestClient_BatchWithInvalidMember(t *testing.T) {
	f := newFakeServer(t, func(f *fakeServer) { f.hold[MethodListTools] = true })
	c, rec := newTestClient(t, f)

	c.Connect(f.descriptor())
	waitFor[SessionInitialized](t, rec, nil)

	id, err := c.ListTools()
	require.NoError(t, err)

	f.push(fmt.Sprintf(
		"event: message\ndata: [%s,{\"jsonrpc\":\"1.0\",\"id\":77,\"result\":{}}]\n\n",
		responseFor(id, MethodListTools),
	))

	resp := waitFor[ResponseReceived](t, rec, nil)
	assert.Equal(t, id, resp.ID)

	warning := waitFor[ProtocolWarning](t, rec, func(w ProtocolWarning) bool {
		return w.Kind == WarningMalformedMessage
	})
	assert.Contains(t, warning.Detail, "batch member 1")
	assert.Equal(t, 0, countOf[RequestFailed](rec))
}

func TestClient_StreamClosedAfterActive(t *testing.T) {
	f := newFakeServer(t, nil)
	c, rec := newTestClient(t, f)

	gen := c.Connect(f.descriptor())
	waitFor[SessionInitialized](t, rec, nil)

	f.closeStream()

	d := waitFor[Disconnected](t, rec, nil)
	assert.Equal(t, gen, d.Generation)
	assert.Equal(t, "stream closed by server", d.Reason)

	_, err := c.ListTools()
	assert.ErrorIs(t, err, ErrSessionNotReady)
}

func TestClient_SupersedingConnect(t *testing.T) {
	a := newFakeServer(t, nil)
	b := newFakeServer(t, nil)
	c, rec := newTestClient(t, a)

	genA := c.Connect(a.descriptor())
	waitFor[SessionInitialized](t, rec, func(e SessionInitialized) bool { return e.Generation == genA })

	genB := c.Connect(b.descriptor())
	assert.Greater(t, genB, genA)
	assert.Equal(t, genB, c.Generation())

	waitFor[SessionInitialized](t, rec, func(e SessionInitialized) bool { return e.Generation == genB })

	oldEnd := indexOf(rec, func(ev Event) bool {
		d, ok := ev.(Disconnected)
		return ok && d.Generation == genA
	})
	newStart := indexOf(rec, func(ev Event) bool {
		cn, ok := ev.(Connecting)
		return ok && cn.Generation == genB
	})

	require.NotEqual(t, -1, oldEnd)
	assert.Less(t, oldEnd, newStart, "the superseded session is torn down before the new attempt starts")

	for _, ev := range rec.snapshot()[oldEnd+1:] {
		assert.Equal(t, genB, ev.AttemptGeneration(), "no events for the superseded generation after its teardown")
	}
}

func TestClient_CloseRefusesConnect(t *testing.T) {
	f := newFakeServer(t, nil)
	c, rec := newTestClient(t, f)

	c.Close()

	assert.Equal(t, uint64(0), c.Connect(f.descriptor()))
	assert.Empty(t, rec.snapshot())
}
