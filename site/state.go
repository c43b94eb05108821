package site

import (
	"sync"
	"time"
)

// StateSnapshot holds the outcome of the latest successful build.
type StateSnapshot struct {
	Report   *Report
	LoadedAt time.Time
}

type StateCache struct {
	mu       sync.RWMutex
	snapshot StateSnapshot
}

func newStateCache() *StateCache {
	return &StateCache{}
}

func (c *StateCache) Update(report *Report) {
	c.mu.Lock()
	c.snapshot = StateSnapshot{Report: report, LoadedAt: time.Now()}
	c.mu.Unlock()
}

func (c *StateCache) Snapshot() StateSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}
