package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/musher-dev/mcpterm/internal/config"
	"github.com/musher-dev/mcpterm/internal/output"
	"github.com/musher-dev/mcpterm/internal/paths"
)

// PathsInfo holds all resolved paths for JSON output.
type PathsInfo struct {
	ConfigRoot   string   `json:"config_root"`
	StateRoot    string   `json:"state_root"`
	ConfigFile   string   `json:"config_file"`
	SearchPaths  []string `json:"search_paths"`
	ActiveConfig string   `json:"active_config"`
	LogFile      string   `json:"log_file"`
}

func newPathsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show where mcpterm stores files",
		Long: `Display the file and directory paths used by mcpterm: where configuration
is searched for, which file is active, and where logs are written.`,
		Example: `  mcpterm paths
  mcpterm paths --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			info := resolvePathsInfo(opts.configPath)

			return out.Result(info, func() {
				out.KeyValues([][2]string{
					{"Config root", info.ConfigRoot},
					{"State root", info.StateRoot},
				})
				out.Print("\n")
				out.KeyValues([][2]string{
					{"Config file", info.ConfigFile},
					{"Active config", info.ActiveConfig},
					{"Log file", info.LogFile},
				})
				out.Print("\n")
				out.Println("Search order:")

				for i, p := range info.SearchPaths {
					out.Print("  %d. %s\n", i+1, p)
				}
			})
		},
	}
}

func resolvePathsInfo(configPath string) PathsInfo {
	info := PathsInfo{
		ConfigRoot:  resolveOrError(paths.ConfigRoot),
		StateRoot:   resolveOrError(paths.StateRoot),
		ConfigFile:  resolveOrError(paths.ConfigFile),
		LogFile:     resolveOrError(paths.DefaultLogFile),
		SearchPaths: paths.ConfigSearchPaths(),
	}

	if configPath != "" {
		info.SearchPaths = []string{configPath}
	}

	cfg, err := config.Load(configPath)

	switch {
	case err != nil:
		info.ActiveConfig = fmt.Sprintf("<error: %v>", err)
	case cfg.File() == "":
		info.ActiveConfig = "<none>"
	default:
		info.ActiveConfig = cfg.File()
	}

	return info
}

func resolveOrError(fn func() (string, error)) string {
	val, err := fn()
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}

	return val
}
