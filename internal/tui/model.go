// Package tui runs the interactive terminal client. The bubbletea program
// is the single consumer of events: key presses, window changes, timer
// ticks and protocol events all pass through state.Transition, and the
// effects it returns are executed here against the protocol client.
package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/musher-dev/mcpterm/internal/command"
	"github.com/musher-dev/mcpterm/internal/mcp"
	"github.com/musher-dev/mcpterm/internal/state"
	"github.com/musher-dev/mcpterm/internal/tui/ui/view"
)

// Client is the part of the protocol client the model drives.
type Client interface {
	Connect(server mcp.ServerDescriptor) uint64
	Disconnect()
	ListTools() (int64, error)
}

// eventMsg carries an event from the event stream into the program.
type eventMsg struct {
	event state.Event
}

// startupMsg runs the start-up commands once the program is running.
type startupMsg struct{}

// Model is the bubbletea model wrapping the application state.
type Model struct {
	state   state.State
	client  Client
	keys    KeyMap
	help    help.Model
	styles  view.Styles
	logger  *slog.Logger
	startup []command.Command
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithStyles sets the screen styles.
func WithStyles(st view.Styles) ModelOption {
	return func(m *Model) {
		m.styles = st
	}
}

// WithLogger sets the logger used for effect execution.
func WithLogger(logger *slog.Logger) ModelOption {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithStartup queues commands executed when the program starts.
func WithStartup(cmds ...command.Command) ModelOption {
	return func(m *Model) {
		m.startup = append(m.startup, cmds...)
	}
}

// NewModel returns a model for s driving client.
func NewModel(s state.State, client Client, opts ...ModelOption) Model {
	m := Model{
		state:  s,
		client: client,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		styles: view.DefaultStyles(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

// State returns the current application state.
func (m Model) State() state.State {
	return m.state
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if len(m.startup) == 0 {
		return nil
	}

	return func() tea.Msg { return startupMsg{} }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var ev state.Event

	switch msg := msg.(type) {
	case startupMsg:
		next, cmd := m.runStartup()
		return next, cmd
	case eventMsg:
		ev = msg.event
	case tea.KeyMsg:
		translated, ok := translateKey(msg)
		if !ok {
			return m, nil
		}

		ev = translated
	case tea.MouseMsg:
		translated, ok := translateMouse(msg)
		if !ok {
			return m, nil
		}

		ev = translated
	case tea.WindowSizeMsg:
		ev = state.Resize{Width: msg.Width, Height: msg.Height}
	default:
		return m, nil
	}

	next, cmd := m.apply(ev)

	return next, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	m.help.Width = m.state.Width

	return view.Render(m.state, view.Options{
		Styles: m.styles,
		Help:   m.help.ShortHelpView(m.keys.ForMode(m.state.Mode)),
	})
}

func (m Model) runStartup() (Model, tea.Cmd) {
	var cmds []tea.Cmd

	for _, c := range m.startup {
		next, eff := state.Execute(m.state, c)
		m.state = next

		var cmd tea.Cmd
		m, cmd = m.settle(eff)
		cmds = append(cmds, cmd)
	}

	m.startup = nil

	return m, tea.Batch(cmds...)
}

// apply runs ev through the state machine and executes the effect.
func (m Model) apply(ev state.Event) (Model, tea.Cmd) {
	next, eff := state.Transition(m.state, ev)
	m.state = next

	return m.settle(eff)
}

// settle executes eff. A failing effect is fed back as EffectFailed, whose
// transition never yields another effect.
func (m Model) settle(eff state.Effect) (Model, tea.Cmd) {
	cmd, err := m.execute(eff)
	if err != nil {
		m.logger.Warn("Effect failed", slog.String("effect", effectName(eff)), slog.String("error", err.Error()))
		m.state, _ = state.Transition(m.state, state.EffectFailed{Effect: eff, Err: err})
	}

	return m, cmd
}

func (m Model) execute(eff state.Effect) (tea.Cmd, error) {
	switch eff := eff.(type) {
	case state.ConnectEffect:
		gen := m.client.Connect(eff.Server)
		m.logger.Debug("Connect started", slog.String("server", eff.Server.Name), slog.Uint64("generation", gen))
	case state.DisconnectEffect:
		m.client.Disconnect()
	case state.ListToolsEffect:
		if _, err := m.client.ListTools(); err != nil {
			return nil, err
		}
	case state.QuitEffect:
		return tea.Quit, nil
	case state.SetMouseEffect:
		if eff.Enabled {
			return tea.EnableMouseCellMotion, nil
		}

		return tea.DisableMouse, nil
	}

	return nil, nil
}

func effectName(eff state.Effect) string {
	switch eff.(type) {
	case state.ConnectEffect:
		return "connect"
	case state.DisconnectEffect:
		return "disconnect"
	case state.ListToolsEffect:
		return "list_tools"
	case state.QuitEffect:
		return "quit"
	case state.SetMouseEffect:
		return "mouse"
	default:
		return "none"
	}
}
