// Package model defines the core domain types shared across the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// PendingEntry represents a single imported ledger entry awaiting review.
// Identity within the review UI is (Generation, Index): the same semantic
// entry can move to a different index after the server reorders the list.
type PendingEntry struct {
	Date       time.Time
	Payee      string // Counterparty name, may be empty
	Narration  string // Free-text description, may be empty
	Account    string
	Currency   string
	SourceDesc string // Raw description from the originating bank file
	Hash       string
	Amount     float64
	Index      int   // Position in the server's current ordering
	Generation int64 // List generation this entry was fetched under
}

// GenerateHash creates a content hash for duplicate detection on import.
// Index and Generation are positional, not identity, so they are excluded.
func (e *PendingEntry) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s:%s",
		e.Date.Format("2006-01-02"),
		e.Amount,
		e.Payee,
		e.Narration,
		e.Account)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// SearchText returns the fields the review filter is allowed to match
// against. Only payee and narration participate; all other fields are
// invisible to the filter.
func (e *PendingEntry) SearchText() (payee, narration string) {
	return e.Payee, e.Narration
}

// Status is the review disposition of a pending entry.
type Status string

// Entry statuses.
const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusIgnored  Status = "ignored"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusIgnored:
		return true
	}
	return false
}

// Metadata describes the server's current view of the pending list: a
// monotonically increasing generation and the total number of entries under
// that generation. A generation change invalidates every cached
// index-to-entry mapping.
type Metadata struct {
	Generation int64
	Total      int
}
