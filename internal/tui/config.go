package tui

import (
	"time"

	"github.com/grzywek/beancount-import/internal/source"
	"github.com/grzywek/beancount-import/internal/tui/themes"
)

// FilterStrategy selects how the filtered set is computed.
type FilterStrategy string

// Filter strategies.
const (
	// StrategyLocal evaluates the filter predicate over locally cached
	// entries. The default.
	StrategyLocal FilterStrategy = "local"
	// StrategyDelegated lets the server compute filter counts and skip
	// targets; the local predicate only fills rows in optimistically.
	StrategyDelegated FilterStrategy = "delegated"
)

// Valid reports whether s names a known strategy.
func (s FilterStrategy) Valid() bool {
	return s == StrategyLocal || s == StrategyDelegated
}

// Config holds TUI configuration.
type Config struct {
	Server       source.Server
	FilterServer source.FilterServer
	Theme        themes.Theme
	Strategy     FilterStrategy
	PollInterval time.Duration
	Width        int
	Height       int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:        themes.Default,
		Strategy:     StrategyLocal,
		PollInterval: time.Second,
		Width:        80,
		Height:       24,
	}
}

// WithServer sets the pending-list server.
func WithServer(server source.Server) Option {
	return func(c *Config) {
		c.Server = server
		// Use the delegated extension when the server offers it.
		if fs, ok := server.(source.FilterServer); ok {
			c.FilterServer = fs
		}
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithStrategy sets the filtered-set strategy.
func WithStrategy(strategy FilterStrategy) Option {
	return func(c *Config) {
		c.Strategy = strategy
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithPollInterval sets how often list metadata is refreshed.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.PollInterval = interval
	}
}
