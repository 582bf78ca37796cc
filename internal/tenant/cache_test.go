package tenant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestPurpose: Validates the TTL boundary of the lookup cache: an entry exactly at the TTL is a miss.
// Scope: Unit Test
// Security: A stale tenant record outliving its TTL would delay deactivation
// Expected: Hit just under the TTL, miss at and beyond it.
// Test Case ID: CACHE-01
func TestTenant_Cache_TTLBoundary(t *testing.T) {
	base := time.Unix(1700000000, 0)
	now := base
	c := NewCache(5 * time.Minute)
	c.now = func() time.Time { return now }

	c.Set(activeTenant("acme"))

	now = base.Add(5*time.Minute - time.Second)
	_, ok := c.Get("acme")
	assert.True(t, ok)

	now = base.Add(5 * time.Minute)
	_, ok = c.Get("acme")
	assert.False(t, ok)
}

// TestPurpose: Validates that Set overwrites and Invalidate removes entries.
// Scope: Unit Test
// Security: The last validated registry state must win over anything cached earlier
// Expected: Get reflects the newest Set; after Invalidate the entry is gone.
// Test Case ID: CACHE-02
func TestTenant_Cache_OverwriteAndInvalidate(t *testing.T) {
	c := NewCache(5 * time.Minute)

	first := activeTenant("acme")
	c.Set(first)

	second := activeTenant("acme")
	second.IsActive = false
	c.Set(second)

	got, ok := c.Get("acme")
	assert.True(t, ok)
	assert.False(t, got.IsActive)

	c.Invalidate("acme")
	_, ok = c.Get("acme")
	assert.False(t, ok)
}

// TestPurpose: Validates that a cache miss for an unknown tenant reports a miss, not a nil hit.
// Scope: Unit Test
// Security: nil tenants leaking out of the cache would panic the resolver
// Expected: ok is false and the tenant pointer is nil.
// Test Case ID: CACHE-03
func TestTenant_Cache_UnknownMiss(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Close()

	got, ok := c.Get("ghost")
	assert.False(t, ok)
	assert.Nil(t, got)
}

// TestPurpose: Validates the cache shutdown path: Close stops the sweeper, is idempotent, and reads stay safe.
// Scope: Unit Test
// Security: A sweeper with no stop path leaks a goroutine per resolver
// Expected: Double Close does not panic; Set/Get keep working and the per-read TTL check still applies.
// Test Case ID: CACHE-04
func TestTenant_Cache_Close(t *testing.T) {
	base := time.Unix(1700000000, 0)
	now := base
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Close()
	c.Close()

	c.Set(activeTenant("acme"))
	_, ok := c.Get("acme")
	assert.True(t, ok)

	now = base.Add(time.Minute)
	_, ok = c.Get("acme")
	assert.False(t, ok)
}
