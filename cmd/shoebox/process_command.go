package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shoebox/internal/daemon"
	"shoebox/internal/logging"
	"shoebox/internal/queue"
	"shoebox/internal/workflow"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process [directory]...",
		Short: "Queue any given roots, then process until no work remains",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}

			if len(args) > 0 {
				if err := queueRoots(cmd, store, args, false); err != nil {
					store.Close()
					return err
				}
			}

			mgr := workflow.NewManager(cfg, store, logger)
			mgr.ConfigureStages(workflow.DefaultStageSet(cfg, store, logger))

			d, err := daemon.New(cfg, store, logger, mgr)
			if err != nil {
				store.Close()
				return err
			}
			defer d.Close()

			if err := mgr.RunPreflightChecks(signalCtx); err != nil {
				return err
			}
			if err := d.RunUntilIdle(signalCtx); err != nil {
				return err
			}

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			total := 0
			for _, count := range stats {
				total += count
			}
			out := cmd.OutOrStdout()
			if total == 0 {
				fmt.Fprintln(out, "Queue is empty")
				return nil
			}
			fmt.Fprintf(out, "Queue drained: %d completed, %d failed, %d awaiting review\n",
				stats[queue.StatusCompleted], stats[queue.StatusFailed], stats[queue.StatusReview])
			return nil
		},
	}
}
