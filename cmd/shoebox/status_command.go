package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shoebox/internal/preflight"
	"shoebox/internal/queue"
)

type statusReport struct {
	ConfigPath       string             `json:"config_path"`
	ConfigExists     bool               `json:"config_exists"`
	ProcessingActive bool               `json:"processing_active"`
	Checks           []preflight.Result `json:"checks"`
	QueueStats       map[string]int     `json:"queue_stats"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show system and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				checks := preflight.RunAll(cmd.Context(), cfg)
				active := processingLockHeld(cfg)

				if ctx.JSONMode() {
					stringStats := make(map[string]int, len(stats))
					for status, count := range stats {
						stringStats[string(status)] = count
					}
					return writeJSON(cmd, statusReport{
						ConfigPath:       ctx.configPath,
						ConfigExists:     ctx.configExists,
						ProcessingActive: active,
						Checks:           checks,
						QueueStats:       stringStats,
					})
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("System Status", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, configStatusLine(ctx.configPath, ctx.configExists, colorize))
				for _, check := range checks {
					fmt.Fprintln(stdout, checkStatusLine(check, colorize))
				}
				fmt.Fprintln(stdout, processingLockLine(active, colorize))
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Queue Status", colorize) {
					fmt.Fprintln(stdout, line)
				}
				rows := buildQueueStatusRows(stats)
				if len(rows) == 0 {
					fmt.Fprintln(stdout, "Queue is empty")
					return nil
				}
				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}
}
