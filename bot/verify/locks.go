package verify

import "sync"

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// DecisionLocks serializes approve/reject actions per approval-card
// message id. Actions on different messages never contend. Entries are
// evicted once the last holder releases, so the registry stays bounded by
// the number of concurrently referenced messages.
type DecisionLocks struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

func NewDecisionLocks() *DecisionLocks {
	return &DecisionLocks{entries: make(map[int64]*lockEntry)}
}

// Acquire blocks until the lock for token is held and returns the release
// function. Release must be called exactly once, on every exit path.
func (l *DecisionLocks) Acquire(token int64) (release func()) {
	l.mu.Lock()
	entry, ok := l.entries[token]
	if !ok {
		entry = &lockEntry{}
		l.entries[token] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()
			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.entries, token)
			}
			l.mu.Unlock()
		})
	}
}

// Len reports how many tokens currently hold registry entries.
func (l *DecisionLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
