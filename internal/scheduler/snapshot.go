package scheduler

import (
	"sync"
	"time"

	"arbradar/internal/spread"
)

// Snapshot is one fully-published opportunity table. Readers always see the
// last complete snapshot, never a partially-built one.
type Snapshot struct {
	Opportunities []spread.Opportunity `json:"opportunities"`
	PublishedAt   time.Time            `json:"published_at"`
}

// SnapshotStore holds the latest published table under a read-write guard
// with copy-on-publish semantics, and fans each publish out to subscribers
// (the websocket stream). The scheduler loop is the only writer.
type SnapshotStore struct {
	mu      sync.RWMutex
	current Snapshot
	subs    map[chan Snapshot]struct{}
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{subs: make(map[chan Snapshot]struct{})}
}

// Publish atomically swaps in a new snapshot. The slice is copied so later
// mutation by the caller cannot tear a published table.
func (s *SnapshotStore) Publish(snapshot Snapshot) {
	snapshot.Opportunities = append([]spread.Opportunity(nil), snapshot.Opportunities...)

	s.mu.Lock()
	s.current = snapshot
	for sub := range s.subs {
		// Slow subscribers drop intermediate snapshots rather than
		// blocking the publish.
		select {
		case sub <- snapshot:
		default:
		}
	}
	s.mu.Unlock()
}

// Snapshot returns the last published table. Plain read, no side effects.
func (s *SnapshotStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.current
	snapshot.Opportunities = append([]spread.Opportunity(nil), snapshot.Opportunities...)
	return snapshot
}

// Subscribe registers for future publishes. The returned cancel func must
// be called to release the subscription.
func (s *SnapshotStore) Subscribe() (<-chan Snapshot, func()) {
	sub := make(chan Snapshot, 1)

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
	}
	return sub, cancel
}
