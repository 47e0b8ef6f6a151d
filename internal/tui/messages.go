package tui

import (
	"github.com/grzywek/beancount-import/internal/model"
)

// Data loading messages.
type metadataMsg struct {
	err  error
	meta model.Metadata
}

// entriesMsg carries a fetched span. start/end identify the requested span
// so a failed fetch can release its in-flight marks for retry.
type entriesMsg struct {
	err        error
	entries    []model.PendingEntry
	generation int64
	start      int
	end        int
}

// filteredCountsMsg carries the server-computed match count under the
// delegated strategy.
type filteredCountsMsg struct {
	err        error
	matched    int
	total      int
	generation int64
}

// skipResultMsg is the server's answer to a skip-to-match request.
type skipResultMsg struct {
	err   error
	index int
}

// statusChangedMsg reports a completed accept/ignore request. The list
// metadata must be reloaded afterwards because the mutation bumped the
// generation.
type statusChangedMsg struct {
	err    error
	index  int
	status model.Status
}

// pollTickMsg drives the metadata poll that notices out-of-band mutations.
type pollTickMsg struct{}

// errorMsg carries a non-fatal error for the status bar.
type errorMsg struct {
	err error
}
