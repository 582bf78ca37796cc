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

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/erpcore/authgate/internal/audit"
	"github.com/erpcore/authgate/internal/authz"
	"github.com/erpcore/authgate/internal/observability/logger"
	"github.com/erpcore/authgate/internal/token"
)

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slog.InfoContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// RequireAccess runs the full authorization pipeline for a route: token
// extraction and decoding, tenant resolution, then the role and permission
// check against req. On allow, the verified claims and resolved tenant are
// injected into the request context and the effective tenant is echoed in
// the X-Tenant-ID response header.
//
// Deny responses never reveal which permission was missing. The body
// carries only the reason code; detail stays in the audit trail.
func (h *Handler) RequireAccess(req authz.Requirement) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			meta := token.RequestMeta{
				IPAddress: getIPAddress(r),
				Path:      r.URL.Path,
			}

			raw, source := token.FromRequest(r, h.cookieName)
			if source == token.SourceQuery {
				// Query tokens leak into access logs and referrers.
				slog.WarnContext(ctx, "token supplied via query parameter",
					logger.Path(r.URL.Path),
					logger.TokenSource(source.String()),
				)
			}

			claims, err := h.codec.Decode(ctx, raw, token.TypeAccess, meta)
			if err != nil {
				h.deny(w, r, nil, authz.DenyFromError(err))
				return
			}

			tn, err := h.resolver.Resolve(ctx, r, claims)
			if err != nil {
				h.deny(w, r, claims, authz.DenyFromError(err))
				return
			}

			verdict := h.engine.Authorize(claims, tn, req)
			if !verdict.Allowed {
				h.deny(w, r, claims, verdict)
				return
			}

			h.meter.RecordDecision(ctx, true, "")
			h.auditLogger.Log(ctx, audit.Event{
				Type:      audit.TypeDecisionAllow,
				Actor:     claims.Subject,
				TenantID:  tn.ID,
				Path:      r.URL.Path,
				IPAddress: meta.IPAddress,
				Decision:  "allow",
			})

			w.Header().Set(h.tenantHeader, tn.ID)
			next.ServeHTTP(w, r.WithContext(withIdentity(ctx, claims, tn)))
		})
	}
}

// deny writes the verdict's status and audits the rejection. claims may be
// nil when the token itself was rejected.
func (h *Handler) deny(w http.ResponseWriter, r *http.Request, claims *token.Claims, verdict authz.Verdict) {
	ctx := r.Context()

	actor, tenantID := "", ""
	if claims != nil {
		actor = claims.Subject
		tenantID = claims.TenantID
	}

	h.meter.RecordDecision(ctx, false, string(verdict.Reason))
	h.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeDecisionDeny,
		Actor:     actor,
		TenantID:  tenantID,
		Path:      r.URL.Path,
		IPAddress: getIPAddress(r),
		Decision:  "deny",
		Reason:    string(verdict.Reason),
	})

	respondJSON(w, verdict.HTTPStatus(), map[string]string{
		"error":  http.StatusText(verdict.HTTPStatus()),
		"reason": string(verdict.Reason),
	})
}
