// Copyright 2026 The AuthGate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tenant

import (
	"sync"
	"time"
)

// Cache is a concurrent-safe, TTL-bounded registry lookup cache. A stale
// entry is never returned: Get re-checks the deadline on every read, and
// Set unconditionally overwrites, so the last validated lookup wins.
// Deactivating a tenant must be paired with Invalidate so the change takes
// effect before the TTL elapses.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration

	done      chan struct{}
	closeOnce sync.Once

	// now is injectable for tests.
	now func() time.Time
}

type cacheEntry struct {
	tenant    *Tenant
	validated time.Time
}

// NewCache creates a cache with the given TTL and starts a background
// sweep that drops expired entries.
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		done:    make(chan struct{}),
		now:     time.Now,
	}

	go c.sweep()

	return c
}

// Close stops the background sweep. Safe to call more than once. Reads
// and writes remain valid after Close; only the expired-entry reaper
// stops, the per-read TTL check still rejects stale entries.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Get returns the cached tenant for id if it was validated within the TTL.
func (c *Cache) Get(id string) (*Tenant, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.validated) >= c.ttl {
		return nil, false
	}
	return entry.tenant, true
}

// Set records a freshly validated tenant, replacing any previous entry.
func (c *Cache) Set(t *Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[t.ID] = cacheEntry{tenant: t, validated: c.now()}
}

// Invalidate drops the entry for id. Called on tenant deactivation so a
// cached ALLOW cannot outlive the change.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// sweep periodically removes expired entries so the map does not grow with
// drive-by tenant identifiers.
func (c *Cache) sweep() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			cutoff := c.now().Add(-c.ttl)
			c.mu.Lock()
			for id, entry := range c.entries {
				if entry.validated.Before(cutoff) {
					delete(c.entries, id)
				}
			}
			c.mu.Unlock()
		}
	}
}
