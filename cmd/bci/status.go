package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/grzywek/beancount-import/internal/model"
)

func acceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept [index...]",
		Short: "Accept pending transactions by index",
		Long: `Accept marks pending transactions as accepted. Indexes refer to the
current pending list as shown by 'bci list'; each accepted entry leaves the
list, so later indexes shift down.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetStatus(cmd.Context(), args, model.StatusAccepted)
		},
	}
}

func ignoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ignore [index...]",
		Short: "Ignore pending transactions by index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetStatus(cmd.Context(), args, model.StatusIgnored)
		},
	}
}

func runSetStatus(ctx context.Context, args []string, status model.Status) error {
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close storage", "error", closeErr)
		}
	}()

	for _, arg := range args {
		index, parseErr := strconv.Atoi(arg)
		if parseErr != nil {
			return fmt.Errorf("invalid index %q: %w", arg, parseErr)
		}

		// Each mutation bumps the generation, so refresh it per entry.
		meta, metaErr := store.Metadata(ctx)
		if metaErr != nil {
			return fmt.Errorf("failed to read metadata: %w", metaErr)
		}

		if err := store.SetStatusByIndex(ctx, meta.Generation, index, status); err != nil {
			return fmt.Errorf("failed to mark entry %d %s: %w", index, status, err)
		}
		fmt.Printf("Entry %d %s\n", index, status)
	}
	return nil
}
