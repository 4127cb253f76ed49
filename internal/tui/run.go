package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/musher-dev/mcpterm/internal/command"
	"github.com/musher-dev/mcpterm/internal/eventstream"
	"github.com/musher-dev/mcpterm/internal/mcp"
	"github.com/musher-dev/mcpterm/internal/state"
	"github.com/musher-dev/mcpterm/internal/tui/ui/view"
)

// DefaultTickInterval drives the connection spinner.
const DefaultTickInterval = 100 * time.Millisecond

// Options configures Run.
type Options struct {
	// Servers are the configured MCP servers.
	Servers []mcp.ServerDescriptor
	// Connect names a server to connect to on start-up.
	Connect string
	// Mouse enables mouse capture on start-up.
	Mouse bool
	// TickInterval is the timer period; zero uses DefaultTickInterval.
	TickInterval time.Duration
	// NoColor renders without colors.
	NoColor bool

	ClientOptions  []mcp.Option
	ProgramOptions []tea.ProgramOption
	Logger         *slog.Logger
}

// Run starts the interactive client and blocks until the user quits or ctx
// is canceled.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := opts.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	events := eventstream.New[state.Event]()
	defer events.Close()

	clientOpts := append([]mcp.Option{mcp.WithLogger(logger)}, opts.ClientOptions...)
	client := mcp.NewClient(func(ev mcp.Event) {
		events.Push(state.Protocol{Event: ev})
	}, clientOpts...)
	defer client.Close()

	initial := state.New(opts.Servers)
	initial.MouseEnabled = opts.Mouse

	styles := view.DefaultStyles()
	if opts.NoColor {
		styles = view.PlainStyles()
	}

	modelOpts := []ModelOption{WithStyles(styles), WithLogger(logger)}
	if opts.Connect != "" {
		modelOpts = append(modelOpts, WithStartup(command.Connect{Server: opts.Connect}))
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if opts.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	programOpts = append(programOpts, opts.ProgramOptions...)

	program := tea.NewProgram(NewModel(initial, client, modelOpts...), programOpts...)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go eventstream.Tick(loopCtx, events, interval, func(time.Time) state.Event {
		return state.Tick{}
	})

	go func() {
		err := eventstream.Forward(loopCtx, events, func(ev state.Event) {
			program.Send(eventMsg{event: ev})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Debug("Event forwarding stopped", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Interactive session started", slog.Int("servers", len(opts.Servers)))

	_, err := program.Run()

	switch {
	case err == nil:
	case errors.Is(err, tea.ErrInterrupted):
		err = nil
	case errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil:
		err = nil
	}

	logger.Info("Interactive session ended")

	return err
}
