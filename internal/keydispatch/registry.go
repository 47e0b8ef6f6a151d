// Package keydispatch routes key presses through an explicit priority order.
// Components register handlers on tiers; dispatch walks tiers from highest
// to lowest and stops at the first handler that consumes the key. This makes
// "the filter sees ']' before list navigation does" a declared contract
// rather than an accident of listener registration order.
package keydispatch

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Tier orders handlers. Higher tiers see keys first.
type Tier int

// Dispatch tiers, highest priority first.
const (
	// TierOverlay is for modal surfaces (help, confirmations) that swallow
	// everything while open.
	TierOverlay Tier = 300
	// TierFilter is for the filter input and the skip-to-match keys; it must
	// outrank list navigation.
	TierFilter Tier = 200
	// TierNavigation is for ordinary list movement.
	TierNavigation Tier = 100
)

// HandlerFunc inspects a key press. It returns true to consume the key and
// stop propagation to lower tiers, plus an optional command to run.
type HandlerFunc func(msg tea.KeyMsg) (bool, tea.Cmd)

// Registration is the handle for a registered handler.
type Registration struct {
	registry *Registry
	id       int
}

// Remove unregisters the handler. Removing twice is harmless.
func (r *Registration) Remove() {
	if r.registry == nil {
		return
	}
	handlers := r.registry.handlers
	for i := range handlers {
		if handlers[i].id == r.id {
			r.registry.handlers = append(handlers[:i], handlers[i+1:]...)
			break
		}
	}
	r.registry = nil
}

type handlerEntry struct {
	fn   HandlerFunc
	name string
	tier Tier
	id   int
}

// Registry holds the tiered handler list.
type Registry struct {
	handlers []handlerEntry
	nextID   int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a handler on the given tier. The name is for debugging.
// Within a tier, earlier registrations are consulted first.
func (r *Registry) Register(tier Tier, name string, fn HandlerFunc) *Registration {
	r.nextID++
	entry := handlerEntry{tier: tier, name: name, fn: fn, id: r.nextID}

	// Insert sorted by descending tier, stable within a tier.
	pos := len(r.handlers)
	for i := range r.handlers {
		if r.handlers[i].tier < tier {
			pos = i
			break
		}
	}
	r.handlers = append(r.handlers, handlerEntry{})
	copy(r.handlers[pos+1:], r.handlers[pos:])
	r.handlers[pos] = entry

	return &Registration{registry: r, id: entry.id}
}

// Dispatch offers the key to handlers in priority order. It returns whether
// any handler consumed the key, and that handler's command.
func (r *Registry) Dispatch(msg tea.KeyMsg) (bool, tea.Cmd) {
	for _, entry := range r.handlers {
		if handled, cmd := entry.fn(msg); handled {
			return true, cmd
		}
	}
	return false, nil
}
