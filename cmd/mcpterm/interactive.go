package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/musher-dev/mcpterm/internal/buildinfo"
	"github.com/musher-dev/mcpterm/internal/config"
	clierrors "github.com/musher-dev/mcpterm/internal/errors"
	"github.com/musher-dev/mcpterm/internal/mcp"
	"github.com/musher-dev/mcpterm/internal/observability"
	"github.com/musher-dev/mcpterm/internal/output"
	"github.com/musher-dev/mcpterm/internal/tui"
)

func runInteractive(cmd *cobra.Command, opts *rootOptions) error {
	out := output.FromContext(cmd.Context())
	logger := observability.FromContext(cmd.Context())

	if !out.Terminal().InteractiveEnabled() {
		return clierrors.TerminalRequired()
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	if opts.connect != "" {
		if _, ok := cfg.Server(opts.connect); !ok {
			return clierrors.ServerNotFound(opts.connect)
		}
	}

	err = tui.Run(cmd.Context(), tui.Options{
		Servers:       cfg.Servers(),
		Connect:       opts.connect,
		Mouse:         opts.mouse,
		TickInterval:  cfg.TickInterval(),
		NoColor:       !out.Terminal().ColorEnabled(),
		ClientOptions: clientOptions(cfg),
		Logger:        logger,
	})
	if err != nil {
		return clierrors.TerminalSetupFailed(err)
	}

	return nil
}

// loadConfig reads the configuration and maps load failures to CLI errors.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)

	switch {
	case err == nil:
		return cfg, nil
	case errors.Is(err, config.ErrNotFound):
		return nil, clierrors.ConfigNotFound(path)
	case errors.Is(err, config.ErrInvalid):
		if path == "" {
			path = "config file"
		}

		return nil, clierrors.ConfigInvalid(path, err)
	default:
		return nil, clierrors.ConfigFailed("load configuration", err)
	}
}

// clientOptions applies the configured watchdogs and identity to the MCP client.
func clientOptions(cfg *config.Config) []mcp.Option {
	return []mcp.Option{
		mcp.WithConnectTimeout(cfg.ConnectTimeout()),
		mcp.WithRequestTimeout(cfg.RequestTimeout()),
		mcp.WithClientInfo(mcp.Implementation{Name: cfg.ClientName(), Version: buildinfo.Version}),
	}
}
