// Package filter derives the visible subset of the pending list from the
// user's filter text. It contains the match predicate and the filtered-set
// builders that reconcile the predicate against the generational cache.
package filter

import (
	"strings"

	"github.com/grzywek/beancount-import/internal/model"
)

// Predicate reports whether a pending entry matches the active filter.
type Predicate func(model.PendingEntry) bool

// IsFiltering reports whether text activates filtered mode. Whitespace-only
// input does not count as a filter.
func IsFiltering(text string) bool {
	return strings.TrimSpace(text) != ""
}

// NewPredicate builds the match predicate for the given filter text.
// Matching is a case-insensitive substring test over the payee and narration
// fields only; empty or whitespace-only text matches every entry.
func NewPredicate(text string) Predicate {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return func(model.PendingEntry) bool { return true }
	}

	return func(entry model.PendingEntry) bool {
		payee, narration := entry.SearchText()
		if strings.Contains(strings.ToLower(payee), needle) {
			return true
		}
		return strings.Contains(strings.ToLower(narration), needle)
	}
}
