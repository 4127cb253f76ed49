// Package doctor runs diagnostic checks for mcpterm: configuration, log
// directory, terminal capabilities and a live handshake with every
// configured MCP server.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/musher-dev/mcpterm/internal/config"
	clierrors "github.com/musher-dev/mcpterm/internal/errors"
	"github.com/musher-dev/mcpterm/internal/mcp"
	"github.com/musher-dev/mcpterm/internal/paths"
	"github.com/musher-dev/mcpterm/internal/terminal"
)

// Status represents the result of a diagnostic check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical failure.
	StatusFail
)

// Result holds the outcome of a single check.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Check is a diagnostic check function.
type Check func(ctx context.Context) Result

// Runner executes diagnostic checks.
type Runner struct {
	checks []namedCheck
}

type namedCheck struct {
	name  string
	check Check
}

// Options selects what the default checks inspect.
type Options struct {
	// Config is the loaded configuration; nil when loading failed.
	Config *config.Config
	// ConfigErr is the error returned by config.Load, if any.
	ConfigErr error
	// Terminal describes stdin/stdout.
	Terminal *terminal.Info
	// ProbeTimeout bounds each server handshake. Zero uses the configured
	// connect timeout.
	ProbeTimeout time.Duration
	// ClientOptions are passed to every probe client.
	ClientOptions []mcp.Option
}

// New creates a runner with the default checks registered. One server check
// is added per configured server.
func New(opts Options) *Runner {
	r := &Runner{}

	r.AddCheck("Configuration", func(context.Context) Result {
		return checkConfig(opts.Config, opts.ConfigErr)
	})
	r.AddCheck("Log directory", func(context.Context) Result {
		return checkLogDir()
	})

	if opts.Terminal != nil {
		r.AddCheck("Terminal", func(context.Context) Result {
			return checkTerminal(opts.Terminal)
		})
	}

	if opts.Config == nil {
		return r
	}

	timeout := opts.ProbeTimeout
	if timeout <= 0 {
		timeout = opts.Config.ConnectTimeout()
	}

	if timeout <= 0 {
		timeout = mcp.DefaultConnectTimeout
	}

	for _, server := range opts.Config.Servers() {
		r.AddCheck("Server "+server.Name, func(ctx context.Context) Result {
			return checkServer(ctx, server, timeout, opts.ClientOptions)
		})
	}

	return r
}

// AddCheck registers a diagnostic check.
func (r *Runner) AddCheck(name string, check Check) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Run executes all registered checks in order and returns the results.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.checks))

	for _, nc := range r.checks {
		result := nc.check(ctx)
		result.Name = nc.name
		results = append(results, result)
	}

	return results
}

// Summary returns counts of passed, failed, and warning checks.
func Summary(results []Result) (passed, failed, warnings int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusWarn:
			warnings++
		}
	}

	return passed, failed, warnings
}

func checkConfig(cfg *config.Config, err error) Result {
	if err != nil {
		var cliErr *clierrors.CLIError
		if errors.As(err, &cliErr) {
			return Result{Status: StatusFail, Message: cliErr.Message, Detail: cliErr.Hint}
		}

		return Result{Status: StatusFail, Message: "Configuration could not be loaded", Detail: err.Error()}
	}

	if cfg == nil || cfg.File() == "" {
		return Result{
			Status:  StatusWarn,
			Message: "No config file found",
			Detail:  clierrors.NoServers().Hint,
		}
	}

	n := len(cfg.Servers())
	if n == 0 {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s (no servers)", cfg.File()),
			Detail:  clierrors.NoServers().Hint,
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (%d %s)", cfg.File(), n, plural(n, "server", "servers")),
	}
}

func checkLogDir() Result {
	dir, err := paths.LogsDir()
	if err != nil {
		return Result{Status: StatusWarn, Message: "Cannot resolve log directory", Detail: err.Error()}
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Result{Status: StatusWarn, Message: dir, Detail: err.Error()}
	}

	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return Result{Status: StatusWarn, Message: dir + " (not writable)", Detail: err.Error()}
	}

	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	return Result{Status: StatusPass, Message: dir}
}

func checkTerminal(info *terminal.Info) Result {
	if !info.InteractiveEnabled() {
		return Result{
			Status:  StatusWarn,
			Message: "Not an interactive terminal",
			Detail:  clierrors.TerminalRequired().Hint,
		}
	}

	return Result{Status: StatusPass, Message: fmt.Sprintf("%dx%d", info.Width, info.Height)}
}

func checkServer(ctx context.Context, server mcp.ServerDescriptor, timeout time.Duration, opts []mcp.Option) Result {
	start := time.Now()

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	session, err := Probe(probeCtx, server, append([]mcp.Option{mcp.WithConnectTimeout(timeout)}, opts...)...)
	elapsed := time.Since(start)

	if err != nil {
		cliErr := clierrors.ServerUnreachable(server.Name, err)

		var connectErr *mcp.ConnectError
		if errors.Is(err, context.DeadlineExceeded) ||
			(errors.As(err, &connectErr) && connectErr.Kind == mcp.ConnectTimeout) {
			cliErr = clierrors.ConnectTimedOut(server.Name, timeout)
		}

		return Result{
			Status:  StatusFail,
			Message: fmt.Sprintf("%s (%v)", server.URL, err),
			Detail:  cliErr.Hint,
		}
	}

	info := session.Server.Name
	if session.Server.Version != "" {
		info += " " + session.Server.Version
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (%dms, %s)", server.URL, elapsed.Milliseconds(), info),
	}
}

// RenderResults formats diagnostic results through the given print functions.
func RenderResults(results []Result, printFn, successFn, warningFn, failureFn, mutedFn func(format string, args ...any)) {
	maxNameLen := 0
	for _, r := range results {
		maxNameLen = max(maxNameLen, len(r.Name))
	}

	for _, r := range results {
		width := maxNameLen + 4

		switch r.Status {
		case StatusPass:
			successFn("%-*s%s", width, r.Name, r.Message)
		case StatusWarn:
			warningFn("%-*s%s", width, r.Name, r.Message)
		case StatusFail:
			failureFn("%-*s%s", width, r.Name, r.Message)
		default:
			printFn("%s %-*s%s\n", r.Status.Symbol(), width, r.Name, r.Message)
		}

		if r.Detail != "" {
			mutedFn("    %s", r.Detail)
		}
	}
}

// Symbol returns the status symbol for display.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return checkMark
	case StatusWarn:
		return warningMark
	case StatusFail:
		return xMark
	default:
		return "?"
	}
}

// String returns the lowercase status name used in JSON output.
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}

const (
	checkMark   = "\u2713" // ✓
	xMark       = "\u2717" // ✗
	warningMark = "\u26A0" // ⚠
)
