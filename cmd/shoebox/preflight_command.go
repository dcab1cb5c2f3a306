package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shoebox/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Verify directories and external tools before processing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			if ctx.JSONMode() {
				return writeJSON(cmd, results)
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)
			var failures []string
			for _, result := range results {
				fmt.Fprintln(stdout, checkStatusLine(result, colorize))
				if !result.Passed {
					failures = append(failures, fmt.Sprintf("%s: %s", result.Name, result.Detail))
				}
			}
			if len(failures) > 0 {
				return fmt.Errorf("preflight checks failed: %s", strings.Join(failures, "; "))
			}
			fmt.Fprintln(stdout, "All preflight checks passed")
			return nil
		},
	}
}
