package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/grzywek/beancount-import/internal/source"
	"github.com/grzywek/beancount-import/internal/tui"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Interactively review pending transactions",
		Long: `Review opens a terminal UI over the pending list. Scroll, filter by
payee or narration, and accept or ignore entries. The view follows changes
made by concurrent imports.`,
		RunE: runReview,
	}
	cmd.Flags().String("filter-strategy", string(tui.StrategyLocal),
		"how the filtered set is computed (local, delegated)")
	_ = viper.BindPFlag("review.filter_strategy", cmd.Flags().Lookup("filter-strategy"))
	return cmd
}

func runReview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	strategy := tui.FilterStrategy(viper.GetString("review.filter_strategy"))
	if !strategy.Valid() {
		return fmt.Errorf("unknown filter strategy %q (want local or delegated)", strategy)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close storage", "error", closeErr)
		}
	}()

	return tui.Run(ctx,
		tui.WithServer(source.NewStoreServer(store)),
		tui.WithStrategy(strategy),
	)
}
