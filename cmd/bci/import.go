package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/grzywek/beancount-import/internal/model"
	"github.com/grzywek/beancount-import/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files or directories...]",
		Short: "Import OFX/QFX files into the pending list",
		Long: `Import parses OFX or QFX bank exports and adds their transactions to
the pending list. Transactions already present (matched by content hash) are
skipped, so re-importing the same export is harmless.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	files, err := collectOFXFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no OFX/QFX files found in %s", strings.Join(args, ", "))
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

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing transactions..."),
	)

	parser := ofx.NewParser()
	var totalInserted, totalSkipped int

	for _, file := range files {
		entries, parseErr := parseOFXFile(ctx, parser, file)
		if parseErr != nil {
			return fmt.Errorf("failed to parse %s: %w", file, parseErr)
		}

		inserted, skipped, insertErr := store.InsertEntries(ctx, entries)
		if insertErr != nil {
			return fmt.Errorf("failed to store entries from %s: %w", file, insertErr)
		}

		totalInserted += inserted
		totalSkipped += skipped
		_ = bar.Add(1)

		slog.Debug("imported file",
			"file", file,
			"parsed", len(entries),
			"inserted", inserted,
			"skipped", skipped)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	fmt.Printf("Imported %d new transactions (%d duplicates skipped) from %d files\n",
		totalInserted, totalSkipped, len(files))
	return nil
}

func parseOFXFile(ctx context.Context, parser *ofx.Parser, path string) ([]model.PendingEntry, error) {
	f, err := os.Open(path) // #nosec G304 -- user-supplied import path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(ctx, f)
}

// collectOFXFiles expands the arguments into a list of .ofx/.qfx files,
// walking one level into directories.
func collectOFXFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		dirEntries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read directory %s: %w", arg, err)
		}
		for _, entry := range dirEntries {
			if entry.IsDir() {
				continue
			}
			if isOFXFile(entry.Name()) {
				files = append(files, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return files, nil
}

func isOFXFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".ofx" || ext == ".qfx"
}
