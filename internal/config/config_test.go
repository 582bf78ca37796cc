package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DB_PASSWORD", "pg-password")
}

// TestPurpose: Validates defaults for the token and tenant sections when only required variables are set.
// Scope: Unit Test
// Security: Wrong TTL or timeout defaults change the system's exposure window
// Expected: 15m access TTL, 720h refresh TTL, 2s registry timeout, 5m cache TTL, X-Tenant-ID header.
// Test Case ID: CFG-01
func TestConfig_Defaults(t *testing.T) {
	validEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 720*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, "authgate", cfg.JWT.Issuer)
	assert.Equal(t, 2*time.Second, cfg.Tenant.RegistryTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Tenant.CacheTTL)
	assert.Equal(t, "X-Tenant-ID", cfg.Tenant.HeaderName)
	assert.Equal(t, "/t", cfg.Tenant.PathPrefix)
	assert.Empty(t, cfg.JWT.PreviousKeys)
}

// TestPurpose: Validates that required secrets are enforced and weak ones rejected.
// Scope: Unit Test
// Security: A short HMAC secret undermines every token in the system
// Expected: Load fails without JWT_SECRET, with a short secret, and without DB_PASSWORD.
// Test Case ID: CFG-02
func TestConfig_Validation(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "pg-password")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "too-short")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DB_PASSWORD", "")
	_, err = Load()
	assert.Error(t, err)
}

// TestPurpose: Validates the tenant cache TTL ceiling.
// Scope: Unit Test
// Security: An over-long cache TTL delays tenant deactivation beyond the accepted bound
// Expected: A TTL above five minutes is rejected.
// Test Case ID: CFG-03
func TestConfig_CacheTTLCeiling(t *testing.T) {
	validEnv(t)

	t.Setenv("TENANT_CACHE_TTL", "10m")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("TENANT_CACHE_TTL", "30s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Tenant.CacheTTL)
}

// TestPurpose: Validates parsing of the comma-separated previous signing keys list.
// Scope: Unit Test
// Security: Mis-parsed rotation keys silently invalidate outstanding tokens
// Expected: Whitespace trimmed, empty entries dropped, order preserved.
// Test Case ID: CFG-04
func TestConfig_PreviousKeysList(t *testing.T) {
	validEnv(t)
	t.Setenv("JWT_PREVIOUS_KEYS", " key-one , ,key-two")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"key-one", "key-two"}, cfg.JWT.PreviousKeys)
}
