package tui

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the review TUI and blocks until the user quits or the context
// is cancelled.
func Run(ctx context.Context, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Server == nil {
		return fmt.Errorf("tui: no server configured")
	}
	if !cfg.Strategy.Valid() {
		return fmt.Errorf("tui: unknown filter strategy %q", cfg.Strategy)
	}

	m := newModel(cfg)
	defer m.Close()

	slog.Debug("starting review TUI",
		"strategy", cfg.Strategy,
		"poll_interval", cfg.PollInterval)

	program := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
