package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/musher-dev/mcpterm/internal/output"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long:  `View the effective mcpterm configuration: file values, MCPTERM_* environment overrides and defaults.`,
	}

	cmd.AddCommand(newConfigListCmd(opts))
	cmd.AddCommand(newConfigGetCmd(opts))

	return cmd
}

func newConfigListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		Long:  `Display every configuration key with its effective value, and the file it was read from.`,
		Example: `  mcpterm config list
  mcpterm config list --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}

			if out.JSON {
				return out.PrintJSON(cfg.All())
			}

			if cfg.File() == "" {
				out.Muted("No config file found; showing defaults.")
			} else {
				out.Muted("Config file: %s", cfg.File())
			}

			out.Println()

			for _, key := range cfg.Keys() {
				out.Print("%s = %s\n", key, formatValue(cfg.Get(key)))
			}

			return nil
		},
	}
}

func newConfigGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long:  `Retrieve and display the effective value of a single configuration key.`,
		Example: `  mcpterm config get mcp.connect_timeout
  mcpterm config get mcp_servers --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key := args[0]

			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}

			value := cfg.Get(key)

			if out.JSON {
				return out.PrintJSON(map[string]any{key: value})
			}

			if value == nil {
				out.Muted("%s is not set", key)
				return nil
			}

			out.Print("%s = %s\n", key, formatValue(value))

			return nil
		},
	}
}

// formatValue renders scalars as-is and structured values as compact JSON.
func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case time.Duration:
		return v.String()
	case bool, int, int64, float64:
		return fmt.Sprint(v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(data)
}
