package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grzywek/beancount-import/internal/model"
)

func TestIsFiltering(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"spaces", "   ", false},
		{"tab and newline", "\t\n", false},
		{"word", "acme", true},
		{"padded word", "  acme  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFiltering(tt.text))
		})
	}
}

func TestNewPredicate(t *testing.T) {
	entry := model.PendingEntry{
		Payee:      "Acme Corp",
		Narration:  "Monthly subscription",
		Account:    "Expenses:Software",
		SourceDesc: "ACH DEBIT ACME",
	}

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty text matches", "", true},
		{"whitespace text matches", "   ", true},
		{"payee substring", "acme", true},
		{"payee case folded", "ACME", true},
		{"narration substring", "subscript", true},
		{"narration case folded", "MONTHLY", true},
		{"trimmed before matching", " acme ", true},
		{"no match", "zebra", false},
		{"account field is not searched", "expenses", false},
		{"source description is not searched", "ach debit", false},
		{"substring not token match", "cme co", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPredicate(tt.text)(entry))
		})
	}

	t.Run("missing fields do not match and do not panic", func(t *testing.T) {
		empty := model.PendingEntry{}
		assert.False(t, NewPredicate("acme")(empty))
		assert.True(t, NewPredicate("")(empty))
	})
}
