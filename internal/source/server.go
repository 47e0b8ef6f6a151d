// Package source defines the transport contract between the review UI and
// whatever serves the pending list, plus the local store-backed
// implementation of that contract.
package source

import (
	"context"

	"github.com/grzywek/beancount-import/internal/model"
)

// Direction selects which neighbouring filtered match to skip to.
type Direction int

// Skip directions.
const (
	Next Direction = iota
	Prev
)

// Server is the transport contract the review UI consumes. Implementations
// must reject requests carrying a superseded generation with
// common.ErrStaleGeneration so the client discards the response instead of
// mixing generations.
type Server interface {
	// Metadata reports the current generation and pending-list length.
	Metadata(ctx context.Context) (model.Metadata, error)
	// FetchRange returns the entries in [start, end) under the given
	// generation.
	FetchRange(ctx context.Context, generation int64, start, end int) ([]model.PendingEntry, error)
	// Accept marks the entry at index as accepted. The entry leaves the
	// pending list and the generation is bumped.
	Accept(ctx context.Context, generation int64, index int) error
	// Ignore marks the entry at index as ignored, with the same list
	// consequences as Accept.
	Ignore(ctx context.Context, generation int64, index int) error
}

// FilterServer is the optional extension for the delegated filtering
// strategy: the server owns the filter text and computes matches itself.
type FilterServer interface {
	// SetFilterText installs the server-side filter.
	SetFilterText(ctx context.Context, text string) error
	// FilteredCounts reports how many pending entries match the installed
	// filter, the total, and the generation the counts were computed under.
	FilteredCounts(ctx context.Context) (matched, total int, generation int64, err error)
	// SkipToMatch returns the index of the nearest filtered match strictly
	// beyond from in the given direction, or common.ErrNotFound when no such
	// match exists.
	SkipToMatch(ctx context.Context, from int, dir Direction) (int, error)
}
