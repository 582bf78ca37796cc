package token

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPurpose: Validates the strict extraction priority: Authorization header, then cookie, then query parameter.
// Scope: Unit Test
// Security: A predictable source order prevents a low-trust transport from shadowing a high-trust one
// Expected: The header wins over cookie and query; the cookie wins over query.
// Test Case ID: EXT-01
func TestToken_FromRequest_Priority(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/finance?access_token=from-query", nil)
	r.Header.Set("Authorization", "Bearer from-header")
	r.AddCookie(&http.Cookie{Name: "authgate_token", Value: "from-cookie"})

	tok, source := FromRequest(r, "authgate_token")
	assert.Equal(t, "from-header", tok)
	assert.Equal(t, SourceHeader, source)

	r.Header.Del("Authorization")
	tok, source = FromRequest(r, "authgate_token")
	assert.Equal(t, "from-cookie", tok)
	assert.Equal(t, SourceCookie, source)

	r2 := httptest.NewRequest(http.MethodGet, "/api/v1/finance?access_token=from-query", nil)
	tok, source = FromRequest(r2, "authgate_token")
	assert.Equal(t, "from-query", tok)
	assert.Equal(t, SourceQuery, source)
}

// TestPurpose: Validates Authorization header parsing edge cases.
// Scope: Unit Test
// Security: Sloppy scheme parsing lets malformed headers smuggle tokens through
// Expected: Case-insensitive Bearer scheme accepted; other schemes and bare values fall through.
// Test Case ID: EXT-02
func TestToken_FromRequest_HeaderParsing(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantToken  string
		wantSource Source
	}{
		{"standard bearer", "Bearer abc", "abc", SourceHeader},
		{"lowercase scheme", "bearer abc", "abc", SourceHeader},
		{"uppercase scheme", "BEARER abc", "abc", SourceHeader},
		{"basic scheme", "Basic dXNlcjpwYXNz", "", SourceNone},
		{"bare value", "abc", "", SourceNone},
		{"empty token", "Bearer ", "", SourceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", tt.header)

			tok, source := FromRequest(r, "")
			assert.Equal(t, tt.wantToken, tok)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

// TestPurpose: Validates that a request with no token anywhere reports SourceNone.
// Scope: Unit Test
// Security: Absence must be reported as absence, not as an empty token
// Expected: Empty token and SourceNone.
// Test Case ID: EXT-03
func TestToken_FromRequest_NoToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil)

	tok, source := FromRequest(r, "authgate_token")
	assert.Empty(t, tok)
	assert.Equal(t, SourceNone, source)
}
