// Package cache provides the short-TTL caches in front of the two queries
// the app re-runs on nearly every page: the assembled plan models and the
// question board. Both are explicit objects with Invalidate, so write paths
// can force a refresh instead of waiting out the TTL.
package cache

import (
	"sync"
	"time"

	"github.com/rondoninha/leitura/internal/plan"
)

const planTTL = 5 * time.Minute

// PlanCache memoizes plan.BuildPlans over the full plan_entries table.
// Staleness inside the TTL window is acceptable: plans change rarely and
// only through imports, which call Invalidate.
type PlanCache struct {
	load func() (map[string]*plan.Plan, error)

	mu        sync.RWMutex
	cached    map[string]*plan.Plan
	loadedAt  time.Time
	haveValue bool
}

// NewPlanCache wraps a loader, typically ListEntryRows piped through
// BuildPlans.
func NewPlanCache(load func() (map[string]*plan.Plan, error)) *PlanCache {
	return &PlanCache{load: load}
}

// Get returns the cached plan models, refreshing when the TTL has lapsed.
// On refresh failure it serves stale data if it has any, so a flaky query
// degrades the dashboard rather than emptying it.
func (c *PlanCache) Get() (map[string]*plan.Plan, error) {
	c.mu.RLock()
	if c.haveValue && time.Since(c.loadedAt) < planTTL {
		v := c.cached
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring the write lock.
	if c.haveValue && time.Since(c.loadedAt) < planTTL {
		return c.cached, nil
	}

	v, err := c.load()
	if err != nil {
		if c.haveValue {
			return c.cached, nil
		}
		return nil, err
	}
	c.cached = v
	c.loadedAt = time.Now()
	c.haveValue = true
	return v, nil
}

// Invalidate drops the cached value; the next Get reloads.
func (c *PlanCache) Invalidate() {
	c.mu.Lock()
	c.haveValue = false
	c.cached = nil
	c.mu.Unlock()
}
