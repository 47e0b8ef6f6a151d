package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/grzywek/beancount-import/internal/common"
	"github.com/grzywek/beancount-import/internal/model"
	"github.com/grzywek/beancount-import/internal/source"
)

const requestTimeout = 10 * time.Second

// loadMetadata fetches the current generation and list length.
func (m Model) loadMetadata() tea.Cmd {
	server := m.config.Server
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		meta, err := server.Metadata(ctx)
		return metadataMsg{meta: meta, err: err}
	}
}

// fetchRange fetches entries in [start, end) under the given generation.
// A stale-generation refusal from the server is not an error; the response
// is simply dropped and the next metadata poll resynchronizes.
func (m Model) fetchRange(generation int64, start, end int) tea.Cmd {
	server := m.config.Server
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		entries, err := server.FetchRange(ctx, generation, start, end)
		if errors.Is(err, common.ErrStaleGeneration) {
			return entriesMsg{generation: generation, start: start, end: end}
		}
		return entriesMsg{generation: generation, entries: entries, err: err, start: start, end: end}
	}
}

// pushFilterText installs the filter text server-side and refreshes the
// authoritative counts. Used only under the delegated strategy.
func (m Model) pushFilterText(text string) tea.Cmd {
	filterServer := m.config.FilterServer
	if filterServer == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := filterServer.SetFilterText(ctx, text); err != nil {
			return filteredCountsMsg{err: err}
		}

		matched, total, gen, err := filterServer.FilteredCounts(ctx)
		return filteredCountsMsg{matched: matched, total: total, generation: gen, err: err}
	}
}

// skipToMatch asks the server for the nearest filtered match beyond from.
func (m Model) skipToMatch(from int, dir source.Direction) tea.Cmd {
	filterServer := m.config.FilterServer
	if filterServer == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		index, err := filterServer.SkipToMatch(ctx, from, dir)
		return skipResultMsg{index: index, err: err}
	}
}

// setStatus requests an accept or ignore of the entry at index.
func (m Model) setStatus(generation int64, index int, status model.Status) tea.Cmd {
	server := m.config.Server
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var err error
		if status == model.StatusAccepted {
			err = server.Accept(ctx, generation, index)
		} else {
			err = server.Ignore(ctx, generation, index)
		}
		return statusChangedMsg{index: index, status: status, err: err}
	}
}

// pollMetadata schedules the next metadata poll. The poll is how the view
// notices generation bumps caused outside this process.
func (m Model) pollMetadata() tea.Cmd {
	return tea.Tick(m.config.PollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}
