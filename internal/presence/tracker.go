// Package presence counts live realtime connections per user.
package presence

import (
	"sort"
	"sync"
)

// Listener is told about 0->1 (online) and 1->0 (offline) transitions.
// It runs with the tracker locked and must not call back into the tracker.
type Listener interface {
	OnPresenceChange(userID string, online bool)
}

type ListenerFunc func(userID string, online bool)

func (f ListenerFunc) OnPresenceChange(userID string, online bool) { f(userID, online) }

type Tracker struct {
	mu        sync.Mutex
	counts    map[string]int
	listeners []Listener
}

func NewTracker() *Tracker {
	return &Tracker{counts: make(map[string]int)}
}

// Subscribe registers l for transitions from now on.
func (t *Tracker) Subscribe(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

// Connect records one more connection for userID. first is true when the
// user just came online.
func (t *Tracker) Connect(userID string) (count int, first bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[userID]++
	count = t.counts[userID]
	if count == 1 {
		t.notify(userID, true)
	}
	return count, count == 1
}

// Disconnect drops one connection for userID. Unknown users are ignored, so
// the count never goes negative. last is true when the user just went offline.
func (t *Tracker) Disconnect(userID string) (count int, last bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	count, ok := t.counts[userID]
	if !ok {
		return 0, false
	}
	count--
	if count > 0 {
		t.counts[userID] = count
		return count, false
	}
	delete(t.counts, userID)
	t.notify(userID, false)
	return 0, true
}

func (t *Tracker) Count(userID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[userID]
}

func (t *Tracker) IsOnline(userID string) bool {
	return t.Count(userID) > 0
}

// Online returns the ids of every online user, sorted.
func (t *Tracker) Online() []string {
	t.mu.Lock()
	ids := make([]string, 0, len(t.counts))
	for id := range t.counts {
		ids = append(ids, id)
	}
	t.mu.Unlock()

	sort.Strings(ids)
	return ids
}

func (t *Tracker) notify(userID string, online bool) {
	for _, l := range t.listeners {
		l.OnPresenceChange(userID, online)
	}
}
