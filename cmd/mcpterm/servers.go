package main

import (
	"github.com/spf13/cobra"

	clierrors "github.com/musher-dev/mcpterm/internal/errors"
	"github.com/musher-dev/mcpterm/internal/mcp"
	"github.com/musher-dev/mcpterm/internal/output"
)

func newServersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "servers",
		Short: "List configured MCP servers",
		Long: `List the servers from the mcp_servers section of the configuration, in
the order the interactive client offers them for selection.`,
		Example: `  mcpterm servers
  mcpterm servers --json
  mcpterm servers --config ./servers.json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}

			servers := cfg.Servers()
			if len(servers) == 0 {
				return clierrors.NoServers()
			}

			return out.Result(servers, func() {
				out.Table([]string{"NAME", "URL"}, serverRows(servers))
				out.Muted("%d configured in %s", len(servers), cfg.File())
			})
		},
	}
}

func serverRows(servers []mcp.ServerDescriptor) [][]string {
	rows := make([][]string, 0, len(servers))
	for _, s := range servers {
		rows = append(rows, []string{s.Name, s.URL})
	}

	return rows
}
