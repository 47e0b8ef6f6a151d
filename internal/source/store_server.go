package source

import (
	"context"
	"fmt"

	"github.com/grzywek/beancount-import/internal/common"
	"github.com/grzywek/beancount-import/internal/model"
	"github.com/grzywek/beancount-import/internal/storage"
)

// StoreServer serves the pending list straight from the local SQLite store.
// It implements both Server and FilterServer.
type StoreServer struct {
	store      *storage.SQLiteStorage
	filterText string
}

// NewStoreServer creates a server over the given store.
func NewStoreServer(store *storage.SQLiteStorage) *StoreServer {
	return &StoreServer{store: store}
}

// Metadata reports the store's current generation and pending count.
func (s *StoreServer) Metadata(ctx context.Context) (model.Metadata, error) {
	return s.store.Metadata(ctx)
}

// FetchRange returns the entries in [start, end) under the given generation.
// If the store has moved on since the caller read its metadata, the request
// fails with common.ErrStaleGeneration rather than returning entries from a
// different generation under the old indices.
func (s *StoreServer) FetchRange(ctx context.Context, generation int64, start, end int) ([]model.PendingEntry, error) {
	if end < start {
		return nil, fmt.Errorf("%w: start=%d end=%d", common.ErrIndexOutOfRange, start, end)
	}

	entries, err := s.store.ListPending(ctx, start, end-start)
	if err != nil {
		return nil, err
	}

	// ListPending stamps each entry with the generation it was read under;
	// a mismatch means the list mutated between the caller's metadata read
	// and this fetch.
	if len(entries) > 0 && entries[0].Generation != generation {
		return nil, fmt.Errorf("%w: requested %d, store at %d",
			common.ErrStaleGeneration, generation, entries[0].Generation)
	}

	return entries, nil
}

// Accept marks the entry at index as accepted.
func (s *StoreServer) Accept(ctx context.Context, generation int64, index int) error {
	return s.store.SetStatusByIndex(ctx, generation, index, model.StatusAccepted)
}

// Ignore marks the entry at index as ignored.
func (s *StoreServer) Ignore(ctx context.Context, generation int64, index int) error {
	return s.store.SetStatusByIndex(ctx, generation, index, model.StatusIgnored)
}

// SetFilterText installs the server-side filter used by FilteredCounts and
// SkipToMatch.
func (s *StoreServer) SetFilterText(_ context.Context, text string) error {
	s.filterText = text
	return nil
}

// FilteredCounts reports the match count for the installed filter.
func (s *StoreServer) FilteredCounts(ctx context.Context) (matched, total int, generation int64, err error) {
	meta, err := s.store.Metadata(ctx)
	if err != nil {
		return 0, 0, 0, err
	}

	indices, err := s.store.MatchingIndices(ctx, s.filterText)
	if err != nil {
		return 0, 0, 0, err
	}

	return len(indices), meta.Total, meta.Generation, nil
}

// SkipToMatch finds the nearest filtered match strictly beyond from.
func (s *StoreServer) SkipToMatch(ctx context.Context, from int, dir Direction) (int, error) {
	indices, err := s.store.MatchingIndices(ctx, s.filterText)
	if err != nil {
		return 0, err
	}

	switch dir {
	case Next:
		for _, idx := range indices {
			if idx > from {
				return idx, nil
			}
		}
	case Prev:
		for i := len(indices) - 1; i >= 0; i-- {
			if indices[i] < from {
				return indices[i], nil
			}
		}
	}

	return 0, fmt.Errorf("%w: no filtered match %s index %d",
		common.ErrNotFound, dir.describe(), from)
}

func (d Direction) describe() string {
	if d == Prev {
		return "before"
	}
	return "after"
}
