// Package pending implements the client-side generational cache for the
// server's pending-entry list. Entries are keyed by (generation, index); a
// generation change invalidates the whole mapping at once. All methods must
// be called from the single event-processing goroutine, so the store takes
// no locks.
package pending

import (
	"log/slog"

	"github.com/grzywek/beancount-import/internal/model"
)

// RangeRequester receives the effectful side of RequestRange: actually going
// to the transport for a span of entries. The store only decides which spans
// are worth fetching; it never performs I/O itself, which keeps the read
// path pure and testable.
type RangeRequester interface {
	RequestRange(generation int64, total, start, end int)
}

// Store caches pending entries under the server's current generation.
type Store struct {
	requester RangeRequester
	entries   map[int]model.PendingEntry
	requested map[int]bool
	subs      map[int]func(Event)
	nextSubID int
	total     int
	gen       int64
}

// NewStore creates an empty store. The requester may be nil, in which case
// RequestRange only records which indices are wanted.
func NewStore(requester RangeRequester) *Store {
	return &Store{
		requester: requester,
		entries:   make(map[int]model.PendingEntry),
		requested: make(map[int]bool),
		subs:      make(map[int]func(Event)),
	}
}

// Generation returns the generation the store currently trusts.
func (s *Store) Generation() int64 {
	return s.gen
}

// Total returns the server-reported list length for the current generation.
func (s *Store) Total() int {
	return s.total
}

// Get returns the entry cached for (generation, index). It reports absent
// when the generation is not current, so stale data is never served under a
// newer generation's index space.
func (s *Store) Get(generation int64, index int) (model.PendingEntry, bool) {
	if generation != s.gen {
		return model.PendingEntry{}, false
	}
	entry, ok := s.entries[index]
	return entry, ok
}

// RequestRange asks the transport for every entry in [start, end) that is
// neither resident nor already in flight. Calling it again with the same
// arguments is a no-op once the range is resident or requested, so render
// passes can issue it freely.
func (s *Store) RequestRange(generation int64, total, start, end int) {
	if generation != s.gen {
		slog.Debug("dropping range request for stale generation",
			"requested", generation, "current", s.gen)
		return
	}

	start = max(start, 0)
	end = min(end, total)

	// Coalesce the missing indices into contiguous spans so the transport
	// sees one request per gap rather than one per index.
	spanStart := -1
	for i := start; i <= end; i++ {
		missing := i < end && !s.resident(i) && !s.requested[i]
		switch {
		case missing && spanStart < 0:
			spanStart = i
		case !missing && spanStart >= 0:
			for j := spanStart; j < i; j++ {
				s.requested[j] = true
			}
			if s.requester != nil {
				s.requester.RequestRange(generation, total, spanStart, i)
			}
			spanStart = -1
		}
	}
}

// Deliver stores entries fetched under the given generation. Deliveries for
// a superseded generation are discarded whole; partially applying them would
// mix two generations under one index space.
func (s *Store) Deliver(generation int64, entries []model.PendingEntry) {
	if generation != s.gen {
		slog.Debug("discarding stale delivery",
			"delivered", generation, "current", s.gen, "count", len(entries))
		return
	}

	for _, entry := range entries {
		s.entries[entry.Index] = entry
		delete(s.requested, entry.Index)
	}

	s.publish(Event{
		Kind:       EventDataReceived,
		Generation: s.gen,
		Total:      s.total,
		Count:      len(entries),
	})
}

// Advance adopts new list metadata. A generation bump (or a length change
// under the same generation) drops every cached entry and every in-flight
// request mark; entries for the old generation that arrive later are
// discarded by Deliver.
func (s *Store) Advance(meta model.Metadata) {
	if meta.Generation < s.gen {
		slog.Debug("ignoring metadata regression",
			"received", meta.Generation, "current", s.gen)
		return
	}
	if meta.Generation == s.gen && meta.Total == s.total {
		return
	}

	s.gen = meta.Generation
	s.total = meta.Total
	s.entries = make(map[int]model.PendingEntry)
	s.requested = make(map[int]bool)

	s.publish(Event{
		Kind:       EventMetadataChanged,
		Generation: s.gen,
		Total:      s.total,
	})
}

// ReleaseRange clears the in-flight marks for [start, end) after a failed
// fetch, so the next RequestRange pass retries the span instead of treating
// it as forever pending. Resident indices are untouched; stale generations
// are ignored.
func (s *Store) ReleaseRange(generation int64, start, end int) {
	if generation != s.gen {
		return
	}
	for i := start; i < end; i++ {
		if !s.resident(i) {
			delete(s.requested, i)
		}
	}
}

// ResidentCount returns how many entries are cached under the current
// generation.
func (s *Store) ResidentCount() int {
	return len(s.entries)
}

func (s *Store) resident(index int) bool {
	_, ok := s.entries[index]
	return ok
}
