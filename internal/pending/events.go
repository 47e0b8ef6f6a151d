package pending

// EventKind identifies what changed in the store.
type EventKind int

// Store event kinds.
const (
	// EventDataReceived fires after a delivery is applied to the cache.
	EventDataReceived EventKind = iota
	// EventMetadataChanged fires after the store adopts a new generation or
	// list length.
	EventMetadataChanged
)

// Event describes a store change delivered to subscribers.
type Event struct {
	Kind       EventKind
	Generation int64
	Total      int
	Count      int // entries applied, for EventDataReceived
}

// Subscription is a handle to an active store subscription. Closing it stops
// delivery; closing twice is harmless.
type Subscription struct {
	store *Store
	id    int
}

// Close removes the subscription from the store.
func (sub *Subscription) Close() {
	if sub.store == nil {
		return
	}
	delete(sub.store.subs, sub.id)
	sub.store = nil
}

// Subscribe registers fn to be called synchronously for every store event.
// The returned handle must be closed when the subscriber goes away.
func (s *Store) Subscribe(fn func(Event)) *Subscription {
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = fn
	return &Subscription{store: s, id: id}
}

func (s *Store) publish(event Event) {
	for _, fn := range s.subs {
		fn(event)
	}
}
