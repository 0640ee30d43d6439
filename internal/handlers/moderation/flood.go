package handlers

import (
	"sync"
	"time"
)

// FloodMonitor keeps a process-local sliding window of activity timestamps per
// user. State is deliberately not persisted: it resets on restart and is not
// shared between replicas.
type FloodMonitor struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	seen   map[int64][]time.Time
}

func NewFloodMonitor(limit int, window time.Duration) *FloodMonitor {
	return &FloodMonitor{
		limit:  limit,
		window: window,
		seen:   make(map[int64][]time.Time),
	}
}

// Observe records an activity event and reports whether the user just crossed
// the flood limit. On a trigger the whole window is cleared, so the stream of
// messages that follows does not re-trigger until the restriction takes hold.
func (m *FloodMonitor) Observe(userID int64, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	fresh := append(m.seen[userID], now)
	cutoff := now.Add(-m.window)
	for len(fresh) > 0 && !fresh[0].After(cutoff) {
		fresh = fresh[1:]
	}

	if len(fresh) > m.limit {
		delete(m.seen, userID)
		return true
	}

	m.seen[userID] = fresh
	return false
}
