// Package selection keeps the user-facing selection and highlight coherent
// while the pending list changes underneath the view. The selection itself
// is owned by the surrounding application; this package only requests
// repairs. The highlight (transient hover/keyboard focus) is owned here.
package selection

import (
	"log/slog"

	"github.com/grzywek/beancount-import/internal/filter"
)

// None marks the absence of a selection or highlight.
const None = -1

// Owner receives selection-change requests. It is the sole writer of the
// current selection.
type Owner interface {
	RequestSelect(index int)
}

// Handle is anything that must be released when the coordinator goes away,
// typically store subscriptions.
type Handle interface {
	Close()
}

// Coordinator repairs the selection after generation changes and tracks the
// highlight. It also owns an arena of subscription handles released together
// on Close, so a torn-down view cannot leak event subscriptions.
type Coordinator struct {
	owner     Owner
	handles   []Handle
	highlight int
}

// NewCoordinator creates a coordinator reporting repairs to owner.
func NewCoordinator(owner Owner) *Coordinator {
	return &Coordinator{
		owner:     owner,
		highlight: None,
	}
}

// Track registers a handle for release on Close.
func (c *Coordinator) Track(h Handle) {
	c.handles = append(c.handles, h)
}

// Close releases every tracked handle, most recently acquired first.
func (c *Coordinator) Close() {
	for i := len(c.handles) - 1; i >= 0; i-- {
		c.handles[i].Close()
	}
	c.handles = nil
	c.highlight = None
}

// Highlight returns the highlighted index, or None.
func (c *Coordinator) Highlight() int {
	return c.highlight
}

// SetHighlight records transient hover/keyboard focus on an index.
func (c *Coordinator) SetHighlight(index int) {
	c.highlight = index
}

// ClearHighlight removes the highlight.
func (c *Coordinator) ClearHighlight() {
	c.highlight = None
}

// Repair checks the current selection against the filtered set and, when the
// selected index is no longer a member, asks the owner to move it: to the
// smallest filtered index at or above the old selection, or failing that to
// the largest filtered index. With an empty filtered set no repair is
// possible and the selection is left alone for the application to resolve.
func (c *Coordinator) Repair(selected int, entries []filter.Entry) {
	if selected == None {
		return
	}

	repaired, ok := RepairIndex(selected, entries)
	if !ok {
		slog.Debug("selection unrepairable, filtered set is empty", "selected", selected)
		return
	}
	if repaired == selected {
		return
	}

	c.owner.RequestSelect(repaired)
}

// RepairIndex computes the repaired selection for the given filtered set.
// It returns the selection unchanged when it is still a member, otherwise
// the smallest member index >= selected, otherwise the largest member. The
// second return is false when the set is empty.
func RepairIndex(selected int, entries []filter.Entry) (int, bool) {
	if len(entries) == 0 {
		return None, false
	}

	// Entries are ordered by ascending index, so the first member at or
	// above the old selection is the repair target.
	for _, e := range entries {
		if e.Index >= selected {
			return e.Index, true
		}
	}

	return entries[len(entries)-1].Index, true
}
