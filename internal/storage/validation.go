package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grzywek/beancount-import/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrEmptySlice   = errors.New("slice cannot be empty")
	ErrInvalidEntry = errors.New("invalid entry")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateEntries validates a slice of entries before insertion.
func validateEntries(entries []model.PendingEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: entries", ErrEmptySlice)
	}
	for i, entry := range entries {
		if entry.Date.IsZero() {
			return fmt.Errorf("%w: entry %d has no date", ErrInvalidEntry, i)
		}
		if strings.TrimSpace(entry.Account) == "" {
			return fmt.Errorf("%w: entry %d has no account", ErrInvalidEntry, i)
		}
	}
	return nil
}
