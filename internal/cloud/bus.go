package cloud

import "sync"

// ChangeKind says which aggregate a change notice concerns.
type ChangeKind string

const (
	// ChangeProject covers inserts/updates of the project row.
	ChangeProject ChangeKind = "project"
	// ChangeEvents covers any mutation of the word_events ledger.
	ChangeEvents ChangeKind = "events"
	// ChangeExternal means another process touched the database file; the
	// affected aggregate is unknown, reload everything.
	ChangeExternal ChangeKind = "external"
)

// Change is a notification that remote state moved. Subscribers re-fetch
// and re-fold the affected aggregate; the notice carries no payload.
type Change struct {
	Kind      ChangeKind
	ProjectID string
}

// Subscription receives change notices until closed.
type Subscription struct {
	ch     chan Change
	mu     sync.Mutex
	closed bool
}

func (s *Subscription) Changes() <-chan Change {
	return s.ch
}

func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func (s *Subscription) send(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- c:
	default:
		// Buffer full: drop. A reload is already pending for this
		// subscriber and reloads are full re-folds, so nothing is lost.
	}
}

// Bus fans a change notice out to every open subscription.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan Change, 16)}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub
}

func (b *Bus) Publish(c Change) {
	b.mu.RLock()
	subs := make([]*Subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.send(c)
	}
}
