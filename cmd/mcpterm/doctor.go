package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/musher-dev/mcpterm/internal/doctor"
	"github.com/musher-dev/mcpterm/internal/output"
)

// DoctorReport is the JSON form of the doctor output.
type DoctorReport struct {
	Results  []doctor.Result `json:"results"`
	Passed   int             `json:"passed"`
	Failed   int             `json:"failed"`
	Warnings int             `json:"warnings"`
}

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues",
		Long: `Run diagnostic checks to identify configuration and connectivity issues.

Checks performed:
  - Configuration file discovery and validation
  - Log directory permissions
  - Terminal capabilities for the interactive interface
  - Endpoint discovery and initialize handshake with every configured server`,
		Example: `  mcpterm doctor
  mcpterm doctor --timeout 3s
  mcpterm doctor --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			cfg, cfgErr := loadConfig(opts.configPath)

			doctorOpts := doctor.Options{
				Config:       cfg,
				ConfigErr:    cfgErr,
				Terminal:     out.Terminal(),
				ProbeTimeout: timeout,
			}
			if cfg != nil {
				doctorOpts.ClientOptions = clientOptions(cfg)
			}

			runner := doctor.New(doctorOpts)

			if out.JSON {
				results := runner.Run(cmd.Context())
				passed, failed, warnings := doctor.Summary(results)

				return out.PrintJSON(DoctorReport{Results: results, Passed: passed, Failed: failed, Warnings: warnings})
			}

			out.Println("mcpterm doctor")
			out.Println("==============")
			out.Println()

			spin := out.Spinner("Running checks")
			spin.Start()

			results := runner.Run(cmd.Context())

			spin.StopWithSuccess("")

			renderDoctor(out, results)

			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-server handshake timeout (default: mcp.connect_timeout)")

	return cmd
}

func renderDoctor(out *output.Writer, results []doctor.Result) {
	doctor.RenderResults(results, out.Print, out.Success, out.Warning, out.Failure, out.Muted)

	passed, failed, warnings := doctor.Summary(results)

	out.Println()
	out.Print("%d passed", passed)

	if failed > 0 {
		out.Print(", %d failed", failed)
	}

	if warnings > 0 {
		out.Print(", %d warning(s)", warnings)
	}

	out.Println()
}
