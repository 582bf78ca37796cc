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

package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erpcore/authgate/internal/audit"
)

// RequestMeta carries request attributes recorded with every decode
// attempt. The raw token itself is never logged.
type RequestMeta struct {
	IPAddress string
	Path      string
}

// Codec signs and verifies identity tokens. HS256 only; the signing method
// allowlist rejects alg-substitution tokens outright.
type Codec struct {
	issuer      string
	keys        KeyProvider
	accessTTL   time.Duration
	refreshTTL  time.Duration
	auditLogger audit.Logger

	// now is injectable for boundary tests; defaults to time.Now.
	now func() time.Time
}

// Config holds codec construction parameters.
type Config struct {
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewCodec creates a token codec.
func NewCodec(cfg Config, keys KeyProvider, auditLogger audit.Logger) *Codec {
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}

	return &Codec{
		issuer:      cfg.Issuer,
		keys:        keys,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// WithTimeFunc overrides the codec clock. Intended for tests.
func (c *Codec) WithTimeFunc(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Issue signs a token of the given type for id. The TTL class follows the
// token type: short-lived for ACCESS, long-lived for REFRESH. Returns the
// signed token and its expiry.
func (c *Codec) Issue(ctx context.Context, id Identity, tokenType Type) (string, time.Time, error) {
	if id.Subject == "" || id.Email == "" {
		return "", time.Time{}, fmt.Errorf("issue: subject and email are required")
	}
	if !id.Role.Valid() {
		return "", time.Time{}, fmt.Errorf("issue: invalid role %q", id.Role)
	}

	ttl := c.accessTTL
	if tokenType == TypeRefresh {
		ttl = c.refreshTTL
	}

	keys, err := c.keys.Keys(ctx)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue: %w", err)
	}

	now := c.now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:     id.Email,
		Role:      id.Role,
		TenantID:  id.TenantID,
		TokenType: tokenType,
	}

	// The first key in the set is the active signing key.
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(keys[0])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue: %w", err)
	}

	c.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTokenIssued,
		Actor:    id.Subject,
		TenantID: id.TenantID,
		Decision: "issued",
		Metadata: map[string]any{
			"token_type": string(tokenType),
			"expires_at": expiresAt,
		},
	})

	return signed, expiresAt, nil
}

// Decode verifies raw against the current key set and returns the claims
// when the token is a valid, unexpired token of the wanted type. Every
// attempt, success or failure, is audited with the caller IP and path.
//
// Failure causes are distinct: signature/structure problems yield
// ErrTokenInvalid, an elapsed expiry yields ErrTokenExpired (strict: a
// token expiring at exactly the current instant is already expired), and a
// type mismatch yields ErrWrongType.
func (c *Codec) Decode(ctx context.Context, raw string, want Type, meta RequestMeta) (*Claims, error) {
	if raw == "" {
		c.auditDenied(ctx, meta, "", ErrTokenMissing)
		return nil, ErrTokenMissing
	}

	keys, err := c.keys.Keys(ctx)
	if err != nil {
		// Key store unavailable: fail closed as an invalid token.
		c.auditDenied(ctx, meta, "", ErrTokenInvalid)
		return nil, ErrTokenInvalid
	}

	claims, err := c.verify(raw, keys)
	if err != nil {
		c.auditDenied(ctx, meta, "", err)
		return nil, err
	}

	// Required-field and enumeration checks happen after signature
	// verification so a forged token never reaches them.
	if claims.Subject == "" || claims.Email == "" || claims.Role == "" {
		c.auditDenied(ctx, meta, claims.Subject, ErrTokenInvalid)
		return nil, ErrTokenInvalid
	}
	if !claims.Role.Valid() {
		c.auditDenied(ctx, meta, claims.Subject, ErrTokenInvalid)
		return nil, ErrTokenInvalid
	}
	if claims.IssuedAt != nil && claims.ExpiresAt != nil && !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		c.auditDenied(ctx, meta, claims.Subject, ErrTokenInvalid)
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != want {
		c.auditDenied(ctx, meta, claims.Subject, ErrWrongType)
		return nil, ErrWrongType
	}

	c.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeTokenDecoded,
		Actor:     claims.Subject,
		TenantID:  claims.TenantID,
		Path:      meta.Path,
		IPAddress: meta.IPAddress,
		Decision:  "accepted",
	})

	return claims, nil
}

// verify tries each currently-valid key in turn. A token signed by a
// rotated-out-but-still-valid key stays verifiable until the key is
// dropped from the set.
func (c *Codec) verify(raw string, keys [][]byte) (*Claims, error) {
	parseOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}

	for _, key := range keys {
		k := key
		claims := &Claims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return k, nil
		}, parseOpts...)

		switch {
		case err == nil:
			return claims, nil
		case errors.Is(err, jwt.ErrTokenExpired):
			// Signature checked out under this key; the token is genuine
			// but stale. No point trying further keys.
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenInvalid
		}
		// Signature mismatch under this key; try the next one.
	}

	return nil, ErrTokenInvalid
}

func (c *Codec) auditDenied(ctx context.Context, meta RequestMeta, actor string, cause error) {
	c.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeTokenRejected,
		Actor:     actor,
		Path:      meta.Path,
		IPAddress: meta.IPAddress,
		Decision:  "rejected",
		Reason:    cause.Error(),
	})
}
