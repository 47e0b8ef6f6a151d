package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grzywek/beancount-import/internal/filter"
)

type fakeOwner struct {
	requests []int
}

func (f *fakeOwner) RequestSelect(index int) {
	f.requests = append(f.requests, index)
}

func entriesAt(indices ...int) []filter.Entry {
	entries := make([]filter.Entry, 0, len(indices))
	for _, i := range indices {
		entries = append(entries, filter.Entry{Index: i})
	}
	return entries
}

func TestRepairIndex(t *testing.T) {
	tests := []struct {
		name     string
		selected int
		set      []int
		want     int
		wantOK   bool
	}{
		{
			name:     "member is kept",
			selected: 5,
			set:      []int{2, 5, 9},
			want:     5,
			wantOK:   true,
		},
		{
			name:     "advances to nearest next",
			selected: 5,
			set:      []int{2, 9},
			want:     9,
			wantOK:   true,
		},
		{
			name:     "wraps to last when nothing follows",
			selected: 12,
			set:      []int{2, 9},
			want:     9,
			wantOK:   true,
		},
		{
			name:     "selection before the set moves to first member",
			selected: 0,
			set:      []int{4, 7},
			want:     4,
			wantOK:   true,
		},
		{
			name:     "empty set is unrepairable",
			selected: 5,
			set:      nil,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RepairIndex(tt.selected, entriesAt(tt.set...))
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCoordinator_Repair(t *testing.T) {
	t.Run("requests repair when selection drops out", func(t *testing.T) {
		owner := &fakeOwner{}
		coord := NewCoordinator(owner)

		coord.Repair(5, entriesAt(2, 9))

		assert.Equal(t, []int{9}, owner.requests)
	})

	t.Run("no request when selection is still valid", func(t *testing.T) {
		owner := &fakeOwner{}
		coord := NewCoordinator(owner)

		coord.Repair(5, entriesAt(2, 5, 9))

		assert.Empty(t, owner.requests)
	})

	t.Run("empty set leaves selection untouched", func(t *testing.T) {
		owner := &fakeOwner{}
		coord := NewCoordinator(owner)

		coord.Repair(5, nil)

		assert.Empty(t, owner.requests)
	})

	t.Run("no selection means nothing to repair", func(t *testing.T) {
		owner := &fakeOwner{}
		coord := NewCoordinator(owner)

		coord.Repair(None, entriesAt(2, 9))

		assert.Empty(t, owner.requests)
	})
}

func TestCoordinator_Highlight(t *testing.T) {
	coord := NewCoordinator(&fakeOwner{})

	assert.Equal(t, None, coord.Highlight())

	coord.SetHighlight(3)
	assert.Equal(t, 3, coord.Highlight())

	coord.SetHighlight(7)
	assert.Equal(t, 7, coord.Highlight())

	coord.ClearHighlight()
	assert.Equal(t, None, coord.Highlight())
}

type closable struct {
	order *[]string
	name  string
}

func (c *closable) Close() {
	*c.order = append(*c.order, c.name)
}

func TestCoordinator_CloseReleasesHandles(t *testing.T) {
	coord := NewCoordinator(&fakeOwner{})

	var order []string
	coord.Track(&closable{order: &order, name: "first"})
	coord.Track(&closable{order: &order, name: "second"})
	coord.SetHighlight(2)

	coord.Close()

	assert.Equal(t, []string{"second", "first"}, order)
	assert.Equal(t, None, coord.Highlight())

	// Closing again releases nothing twice.
	coord.Close()
	assert.Len(t, order, 2)
}
