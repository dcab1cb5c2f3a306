package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"shoebox/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var requeue bool

	cmd := &cobra.Command{
		Use:   "add <directory>...",
		Short: "Queue extraction roots for processing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				return queueRoots(cmd, store, args, requeue)
			})
		},
	}

	cmd.Flags().BoolVar(&requeue, "again", false, "Queue the root even when a previous item exists for it")
	return cmd
}

// queueRoots validates each directory argument and inserts a queue item for
// it, skipping roots that already have an item unless requeue is set.
func queueRoots(cmd *cobra.Command, store *queue.Store, args []string, requeue bool) error {
	out := cmd.OutOrStdout()
	for _, arg := range args {
		absPath, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("directory does not exist: %s", absPath)
			}
			return fmt.Errorf("inspect directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", absPath)
		}

		existing, err := store.FindByRoot(cmd.Context(), absPath)
		if err != nil {
			return err
		}
		if existing != nil && !requeue {
			fmt.Fprintf(out, "Already queued as item #%d (%s): %s\n", existing.ID, existing.Status, absPath)
			continue
		}

		item, err := store.NewRoot(cmd.Context(), absPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Queued %s as item #%d\n", item.Label, item.ID)
	}
	return nil
}
