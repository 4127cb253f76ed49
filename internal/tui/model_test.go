package tui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musher-dev/mcpterm/internal/command"
	"github.com/musher-dev/mcpterm/internal/mcp"
	"github.com/musher-dev/mcpterm/internal/state"
	"github.com/musher-dev/mcpterm/internal/tui/ui/view"
)

var testServers = []mcp.ServerDescriptor{
	{Name: "local", URL: "http://127.0.0.1:8000/sse"},
	{Name: "remote", URL: "https://mcp.example.com/sse"},
}

type fakeClient struct {
	connects    []mcp.ServerDescriptor
	disconnects int
	listCalls   int
	listErr     error
}

func (c *fakeClient) Connect(server mcp.ServerDescriptor) uint64 {
	c.connects = append(c.connects, server)
	return uint64(len(c.connects))
}

func (c *fakeClient) Disconnect() {
	c.disconnects++
}

func (c *fakeClient) ListTools() (int64, error) {
	c.listCalls++
	return int64(c.listCalls), c.listErr
}

func newTestModel(client Client, opts ...ModelOption) Model {
	opts = append([]ModelOption{WithStyles(view.PlainStyles())}, opts...)
	return NewModel(state.New(testServers), client, opts...)
}

// send feeds msgs to m and returns the final model and the last command.
func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	var last tea.Cmd

	for _, msg := range msgs {
		next, cmd := m.Update(msg)

		var ok bool

		m, ok = next.(Model)
		require.True(t, ok)

		if cmd != nil {
			last = cmd
		}
	}

	return m, last
}

func typed(text string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(text))
	for _, r := range text {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	return msgs
}

func enter() tea.Msg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

func protocol(ev mcp.Event) tea.Msg {
	return eventMsg{event: state.Protocol{Event: ev}}
}

func TestModel_QuitCommand(t *testing.T) {
	m := newTestModel(&fakeClient{})

	msgs := append(typed(":q"), enter())
	m, cmd := send(t, m, msgs...)

	assert.True(t, m.State().Quit)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_CtrlQQuitsFromInsert(t *testing.T) {
	m := newTestModel(&fakeClient{})

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'i'}}, tea.KeyMsg{Type: tea.KeyCtrlQ})

	assert.True(t, m.State().Quit)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_ConnectExecutesEffect(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(client)

	msgs := append(typed(":mcp connect remote"), enter())
	m, _ = send(t, m, msgs...)

	require.Len(t, client.connects, 1)
	assert.Equal(t, "remote", client.connects[0].Name)
	assert.Equal(t, state.Normal, m.State().Mode)
}

func TestModel_StartupConnect(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(client, WithStartup(command.Connect{Server: "local"}))

	start := m.Init()
	require.NotNil(t, start)

	m, _ = send(t, m, start())

	require.Len(t, client.connects, 1)
	assert.Equal(t, "local", client.connects[0].Name)
	assert.Equal(t, state.Normal, m.State().Mode)
	assert.Empty(t, m.State().History.Entries())

	// Startup commands run once.
	m, _ = send(t, m, startupMsg{})
	assert.Len(t, client.connects, 1)
}

func TestModel_NoStartupCommands(t *testing.T) {
	assert.Nil(t, newTestModel(&fakeClient{}).Init())
}

func TestModel_SessionListsTools(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(client)

	m, _ = send(t, m,
		protocol(mcp.Connecting{Generation: 1, Server: testServers[0]}),
		protocol(mcp.EndpointDiscovered{Generation: 1, Endpoint: "http://127.0.0.1:8000/messages?session_id=1"}),
		protocol(mcp.SessionInitialized{Generation: 1, Server: mcp.Implementation{Name: "demo", Version: "1.0"}}),
	)

	assert.Equal(t, 1, client.listCalls)
	assert.IsType(t, state.SessionActive{}, m.State().Connection)
}

func TestModel_FailedEffectIsLogged(t *testing.T) {
	client := &fakeClient{listErr: errors.New("session not ready")}
	m := newTestModel(client)

	m, _ = send(t, m,
		protocol(mcp.Connecting{Generation: 1, Server: testServers[0]}),
		protocol(mcp.EndpointDiscovered{Generation: 1, Endpoint: "http://127.0.0.1:8000/messages"}),
		protocol(mcp.SessionInitialized{Generation: 1}),
	)

	assert.Equal(t, 1, client.listCalls)
	assert.Equal(t, "Error: session not ready", m.State().Log.Last())
}

func TestModel_Disconnect(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(client)

	m, _ = send(t, m,
		protocol(mcp.Connecting{Generation: 1, Server: testServers[0]}),
		protocol(mcp.EndpointDiscovered{Generation: 1, Endpoint: "http://127.0.0.1:8000/messages"}),
		protocol(mcp.SessionInitialized{Generation: 1}),
	)
	require.IsType(t, state.SessionActive{}, m.State().Connection)

	msgs := append(typed(":mcp disconnect"), enter())
	send(t, m, msgs...)

	assert.Equal(t, 1, client.disconnects)
}

func TestModel_DisconnectWhenIdle(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(client)

	msgs := append(typed(":mcp disconnect"), enter())
	m, _ = send(t, m, msgs...)

	assert.Zero(t, client.disconnects)
	assert.Equal(t, "Not connected", m.State().Log.Last())
}

func TestModel_MouseToggle(t *testing.T) {
	m := newTestModel(&fakeClient{})

	msgs := append(typed(":mouse on"), enter())
	m, cmd := send(t, m, msgs...)

	assert.True(t, m.State().MouseEnabled)
	assert.NotNil(t, cmd)

	m = m.withLog(40)
	m, _ = send(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, wheelStep, m.State().Scroll)

	msgs = append(typed(":mouse off"), enter())
	m, cmd = send(t, m, msgs...)

	assert.False(t, m.State().MouseEnabled)
	assert.NotNil(t, cmd)
}

func TestModel_WindowSize(t *testing.T) {
	m := newTestModel(&fakeClient{})

	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Equal(t, 100, m.State().Width)
	assert.Equal(t, 30, m.State().Height)
}

func TestModel_TickAdvancesSpinner(t *testing.T) {
	m := newTestModel(&fakeClient{})

	m, _ = send(t, m, eventMsg{event: state.Tick{}}, eventMsg{event: state.Tick{}})

	assert.Equal(t, uint64(2), m.State().Ticks)
}

func TestModel_IgnoresUnknownMessages(t *testing.T) {
	m := newTestModel(&fakeClient{})
	before := m.State()

	m, cmd := send(t, m, tea.FocusMsg{}, tea.KeyMsg{Type: tea.KeyF5})

	assert.Nil(t, cmd)
	assert.Equal(t, before, m.State())
}

func TestModel_View(t *testing.T) {
	m := newTestModel(&fakeClient{})

	out := m.View()
	rows := strings.Split(out, "\n")

	require.Len(t, rows, 24)
	assert.Contains(t, rows[0], "mcpterm")
	assert.Contains(t, rows[0], "NORMAL")
	assert.Contains(t, rows[23], "insert")
	assert.Contains(t, rows[23], "command")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{':'}})
	rows = strings.Split(m.View(), "\n")
	assert.Contains(t, rows[23], "complete")
}

func TestRun_QuitsOnCtrlQ(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := Run(ctx, Options{
		Servers:      testServers,
		NoColor:      true,
		TickInterval: 10 * time.Millisecond,
		ProgramOptions: []tea.ProgramOption{
			tea.WithInput(bytes.NewReader([]byte{0x11})),
			tea.WithOutput(io.Discard),
			tea.WithoutRenderer(),
			tea.WithoutSignalHandler(),
		},
	})

	require.NoError(t, err)
	assert.NoError(t, ctx.Err(), "program exited on the key, not the deadline")
}

// withLog appends n lines so the log can scroll.
func (m Model) withLog(n int) Model {
	for i := range n {
		m.state.Log = m.state.Log.Append(strings.Repeat("x", i%5+1))
	}

	return m
}
