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
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/erpcore/authgate/internal/audit"
	"github.com/erpcore/authgate/internal/token"
)

// Source identifies which extraction strategy produced a tenant candidate.
type Source int

const (
	SourceNone Source = iota
	SourceHeader
	SourceSubdomain
	SourcePath
	SourceClaim
)

func (s Source) String() string {
	switch s {
	case SourceHeader:
		return "header"
	case SourceSubdomain:
		return "subdomain"
	case SourcePath:
		return "path"
	case SourceClaim:
		return "claim"
	}
	return "none"
}

// CacheMetrics records cache effectiveness per lookup. Satisfied by the
// observability meter; a nil value disables recording.
type CacheMetrics interface {
	RecordCacheLookup(ctx context.Context, hit bool)
}

// ResolverConfig holds resolver construction parameters.
type ResolverConfig struct {
	// HeaderName is the explicit tenant header, e.g. X-Tenant-ID.
	HeaderName string

	// PathPrefix is the fixed prefix for path-segment extraction; the
	// first component after it is taken as the tenant identifier
	// (e.g. /t/acme/orders with prefix /t yields acme).
	PathPrefix string

	// LookupTimeout bounds each registry call. Registry timeouts are
	// failed closed as not-found.
	LookupTimeout time.Duration

	// CacheTTL enables the lookup cache when positive.
	CacheTTL time.Duration

	// Metrics receives a hit/miss sample for every cached lookup path.
	Metrics CacheMetrics
}

// Resolver extracts a tenant identifier from a request through a
// prioritized strategy chain and validates it against the registry.
type Resolver struct {
	registry    Registry
	cache       *Cache
	auditLogger audit.Logger
	metrics     CacheMetrics

	headerName    string
	pathPrefix    string
	lookupTimeout time.Duration
}

// NewResolver creates a tenant resolver.
func NewResolver(registry Registry, auditLogger audit.Logger, cfg ResolverConfig) *Resolver {
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}
	pathPrefix := cfg.PathPrefix
	if pathPrefix == "" {
		pathPrefix = "/t"
	}
	lookupTimeout := cfg.LookupTimeout
	if lookupTimeout <= 0 {
		lookupTimeout = 2 * time.Second
	}

	r := &Resolver{
		registry:      registry,
		auditLogger:   auditLogger,
		metrics:       cfg.Metrics,
		headerName:    headerName,
		pathPrefix:    strings.TrimSuffix(pathPrefix, "/"),
		lookupTimeout: lookupTimeout,
	}
	if cfg.CacheTTL > 0 {
		r.cache = NewCache(cfg.CacheTTL)
	}
	return r
}

// Extract runs the strategy chain in strict priority order and returns the
// first candidate: explicit header, host subdomain, path segment, then the
// tenant bound into the validated claim. Non-token sources are not
// cross-validated against each other; only the claim is cross-checked, in
// Resolve.
func (r *Resolver) Extract(req *http.Request, claims *token.Claims) (string, Source) {
	if id := req.Header.Get(r.headerName); id != "" {
		return id, SourceHeader
	}

	if id := r.subdomain(req.Host); id != "" {
		return id, SourceSubdomain
	}

	if id := r.pathSegment(req.URL.Path); id != "" {
		return id, SourcePath
	}

	if claims != nil && claims.TenantID != "" {
		return claims.TenantID, SourceClaim
	}

	return "", SourceNone
}

// Resolve extracts, cross-checks and validates the tenant for a request.
// A request-extracted tenant differing from the token-bound tenant is
// treated as probable spoofing: audited and logged at WARN, never as a
// plain validation failure.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request, claims *token.Claims) (*Tenant, error) {
	candidate, source := r.Extract(req, claims)
	if candidate == "" {
		return nil, ErrTenantMissing
	}

	if claims != nil && claims.TenantID != "" && source != SourceClaim && candidate != claims.TenantID {
		slog.WarnContext(ctx, "tenant mismatch between request and token",
			slog.String("extracted_tenant", candidate),
			slog.String("token_tenant", claims.TenantID),
			slog.String("source", source.String()),
			slog.String("path", req.URL.Path),
		)
		r.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeTenantMismatch,
			Actor:    claims.Subject,
			TenantID: claims.TenantID,
			Path:     req.URL.Path,
			Decision: "rejected",
			Reason:   ErrTenantMismatch.Error(),
			Metadata: map[string]any{
				"extracted_tenant": candidate,
				"source":           source.String(),
			},
		})
		return nil, ErrTenantMismatch
	}

	t, err := r.lookup(ctx, candidate)
	if err != nil {
		return nil, err
	}

	if !t.IsActive {
		return nil, ErrTenantInactive
	}

	return t, nil
}

// lookup consults the cache, then the registry under the configured
// timeout. Any registry failure other than a definitive not-found is
// failed closed as not-found.
func (r *Resolver) lookup(ctx context.Context, id string) (*Tenant, error) {
	if r.cache != nil {
		if t, ok := r.cache.Get(id); ok {
			r.recordCacheLookup(ctx, true)
			return t, nil
		}
		r.recordCacheLookup(ctx, false)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	t, err := r.registry.Lookup(lookupCtx, id)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		slog.ErrorContext(ctx, "tenant registry lookup failed, failing closed",
			slog.String("tenant_id", id),
			slog.String("error", err.Error()),
		)
		return nil, ErrTenantNotFound
	}

	if r.cache != nil {
		r.cache.Set(t)
	}
	return t, nil
}

// Invalidate drops a tenant from the lookup cache. Wire this to tenant
// deactivation so the change is effective immediately.
func (r *Resolver) Invalidate(id string) {
	if r.cache != nil {
		r.cache.Invalidate(id)
	}
}

// Close stops the cache's background sweep, if a cache is configured.
func (r *Resolver) Close() {
	if r.cache != nil {
		r.cache.Close()
	}
}

func (r *Resolver) recordCacheLookup(ctx context.Context, hit bool) {
	if r.metrics != nil {
		r.metrics.RecordCacheLookup(ctx, hit)
	}
}

// subdomain extracts the left-most host label when the host has at least
// three labels (tenant.erp.example). Bare domains and IPs yield nothing.
func (r *Resolver) subdomain(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if net.ParseIP(host) != nil {
		return ""
	}
	parts := strings.Split(host, ".")
	if len(parts) >= 3 && parts[0] != "" && parts[0] != "www" {
		return parts[0]
	}
	return ""
}

// pathSegment extracts the first path component after the configured
// prefix. Components starting with an underscore are reserved for internal
// routes and skipped.
func (r *Resolver) pathSegment(path string) string {
	if !strings.HasPrefix(path, r.pathPrefix+"/") {
		return ""
	}
	rest := strings.TrimPrefix(path, r.pathPrefix+"/")
	seg, _, _ := strings.Cut(rest, "/")
	if seg == "" || strings.HasPrefix(seg, "_") {
		return ""
	}
	return seg
}
