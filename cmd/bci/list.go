package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/grzywek/beancount-import/internal/source"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print pending transactions",
		RunE:  runList,
	}
	cmd.Flags().Int("offset", 0, "skip this many entries")
	cmd.Flags().Int("limit", 50, "print at most this many entries")
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	offset, _ := cmd.Flags().GetInt("offset")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close storage", "error", closeErr)
		}
	}()

	meta, err := store.Metadata(ctx)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	if meta.Total == 0 {
		fmt.Println("No pending transactions. Run 'bci import' first.")
		return nil
	}

	if offset >= meta.Total {
		fmt.Printf("Nothing to show at offset %d (%d pending)\n", offset, meta.Total)
		return nil
	}

	server := source.NewStoreServer(store)
	end := offset + limit
	if end > meta.Total {
		end = meta.Total
	}
	entries, err := server.FetchRange(ctx, meta.Generation, offset, end)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tDATE\tPAYEE\tNARRATION\tAMOUNT\tACCOUNT")
	for _, entry := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f %s\t%s\n",
			entry.Index,
			entry.Date.Format("2006-01-02"),
			entry.Payee,
			entry.Narration,
			entry.Amount,
			entry.Currency,
			entry.Account)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d pending (generation %d)\n", meta.Total, meta.Generation)
	return nil
}
