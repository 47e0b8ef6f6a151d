package filter

// LocalBuilder computes the filtered set entirely client-side: it walks the
// index space of the current generation, reads each entry from the cache,
// and keeps the ones the predicate accepts. Missing entries are skipped for
// this rebuild; the caller is expected to pre-warm the full range when the
// filter activates, so gaps close as deliveries arrive.
type LocalBuilder struct {
	fallback fallbackCache
}

// NewLocalBuilder creates a local-strategy builder.
func NewLocalBuilder() *LocalBuilder {
	return &LocalBuilder{}
}

// Build recomputes the filtered set from current cache contents.
func (b *LocalBuilder) Build(cache Cache, filterText string) Result {
	fresh := scan(cache, NewPredicate(filterText))

	if !IsFiltering(filterText) {
		// Unfiltered mode has no flicker problem; every entry matches.
		b.fallback.reset()
		return fresh
	}

	return b.fallback.resolve(fresh)
}

// Reset drops the anti-flicker fallback.
func (b *LocalBuilder) Reset() {
	b.fallback.reset()
}
