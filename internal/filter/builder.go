package filter

import (
	"github.com/grzywek/beancount-import/internal/model"
)

// Cache is the read-only view of the generational store the builders need.
// *pending.Store satisfies it.
type Cache interface {
	Generation() int64
	Total() int
	Get(generation int64, index int) (model.PendingEntry, bool)
}

// Entry is one member of the filtered set.
type Entry struct {
	Record model.PendingEntry
	Index  int
}

// Result is a rebuilt filtered set. Entries is ordered by ascending index
// and is recomputed from scratch on every call, never patched.
type Result struct {
	Entries    []Entry
	Generation int64
	Total      int
	// MatchCount is the number of matching entries. Under the delegated
	// strategy it may come from the server and exceed len(Entries) while
	// entries are still streaming in.
	MatchCount int
	// Complete reports that every index of the current generation was
	// resident during the rebuild, so the result cannot be a loading gap.
	Complete bool
	// Fallback marks a result served from the anti-flicker cache instead of
	// the (empty) fresh rebuild.
	Fallback bool
}

// SetBuilder computes the filtered set for the current cache contents and
// filter text. Implementations keep the anti-flicker fallback: a rebuild
// that comes up empty while data may still be streaming in returns the last
// non-empty result instead of flashing the view empty.
type SetBuilder interface {
	Build(cache Cache, filterText string) Result
	// Reset drops the anti-flicker fallback. Called when the filter text
	// becomes empty.
	Reset()
}

// fallbackCache holds the last non-empty filtered result. It is shared by
// both builder strategies.
//
// The fallback survives generation bumps. A bump empties the cache, and the
// empty rebuild that immediately follows is exactly the loading gap the
// fallback exists to cover; invalidating on bump would flash the view empty
// on every accept or ignore. Results served this way are re-stamped with the
// current generation and total and flagged Fallback, and are replaced by the
// first fresh non-empty rebuild, a confirmed-complete empty rebuild, or the
// filter emptying.
type fallbackCache struct {
	last Result
	ok   bool
}

// resolve applies the anti-flicker policy to a fresh rebuild. A non-empty
// rebuild replaces the fallback. An empty rebuild over an incomplete cache
// is treated as a transient loading gap and the fallback is served instead;
// an empty rebuild over a fully resident cache is a confirmed empty set, so
// it is shown as-is and the fallback is dropped.
func (f *fallbackCache) resolve(fresh Result) Result {
	if len(fresh.Entries) > 0 {
		f.last = fresh
		f.ok = true
		return fresh
	}

	if fresh.Complete {
		f.ok = false
		return fresh
	}

	if f.ok {
		stale := f.last
		stale.Fallback = true
		stale.Generation = fresh.Generation
		stale.Total = fresh.Total
		return stale
	}

	return fresh
}

func (f *fallbackCache) reset() {
	f.ok = false
	f.last = Result{}
}

// scan runs the predicate over every index of the current generation,
// skipping absent entries. Absent indices are re-evaluated on the next
// rebuild, never remembered as non-matching.
func scan(cache Cache, pred Predicate) Result {
	gen := cache.Generation()
	total := cache.Total()

	result := Result{
		Generation: gen,
		Total:      total,
		Complete:   true,
	}

	for i := 0; i < total; i++ {
		entry, ok := cache.Get(gen, i)
		if !ok {
			result.Complete = false
			continue
		}
		if pred(entry) {
			result.Entries = append(result.Entries, Entry{Index: i, Record: entry})
		}
	}

	result.MatchCount = len(result.Entries)
	return result
}
