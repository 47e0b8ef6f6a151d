package filter

// CountProvider reports the server-computed match count for the active
// server-side filter, if one is available for the given generation.
type CountProvider interface {
	FilteredCounts(generation int64) (matched int, ok bool)
}

// DelegatedBuilder lets the server own the filtered count: the transport is
// told the filter text out of band, reports (matched, total), and that count
// is authoritative. The local predicate still runs over resident entries as
// an optimistic pass so rows appear while the authoritative data streams in.
type DelegatedBuilder struct {
	counts   CountProvider
	fallback fallbackCache
}

// NewDelegatedBuilder creates a delegated-strategy builder backed by the
// given count provider.
func NewDelegatedBuilder(counts CountProvider) *DelegatedBuilder {
	return &DelegatedBuilder{counts: counts}
}

// Build recomputes the filtered set, preferring the server's match count
// over the local one whenever the server has confirmed a count for the
// current generation.
func (b *DelegatedBuilder) Build(cache Cache, filterText string) Result {
	fresh := scan(cache, NewPredicate(filterText))

	if !IsFiltering(filterText) {
		b.fallback.reset()
		return fresh
	}

	if matched, ok := b.counts.FilteredCounts(fresh.Generation); ok {
		fresh.MatchCount = matched
		// A confirmed zero from the server settles the empty case even when
		// the local cache still has gaps.
		if matched == 0 {
			fresh.Complete = true
			fresh.Entries = nil
		}
	}

	return b.fallback.resolve(fresh)
}

// Reset drops the anti-flicker fallback.
func (b *DelegatedBuilder) Reset() {
	b.fallback.reset()
}
