package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPendingEntry_GenerateHash(t *testing.T) {
	base := PendingEntry{
		Date:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Payee:     "Acme Corp",
		Narration: "Invoice 42",
		Account:   "Assets:Checking",
		Amount:    -125.50,
	}

	t.Run("deterministic", func(t *testing.T) {
		a, b := base, base
		assert.Equal(t, a.GenerateHash(), b.GenerateHash())
	})

	t.Run("ignores position", func(t *testing.T) {
		a, b := base, base
		b.Index = 7
		b.Generation = 3
		assert.Equal(t, a.GenerateHash(), b.GenerateHash())
	})

	t.Run("distinguishes content", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*PendingEntry)
		}{
			{"payee", func(e *PendingEntry) { e.Payee = "Other" }},
			{"narration", func(e *PendingEntry) { e.Narration = "Other" }},
			{"amount", func(e *PendingEntry) { e.Amount = 1.00 }},
			{"date", func(e *PendingEntry) { e.Date = e.Date.AddDate(0, 0, 1) }},
			{"account", func(e *PendingEntry) { e.Account = "Assets:Savings" }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				changed := base
				tt.mutate(&changed)
				assert.NotEqual(t, base.GenerateHash(), changed.GenerateHash())
			})
		}
	})
}

func TestStatus_Valid(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{StatusAccepted, true},
		{StatusIgnored, true},
		{Status(""), false},
		{Status("reviewed"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Valid())
		})
	}
}
