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
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/erpcore/authgate/internal/audit"
	"github.com/erpcore/authgate/internal/authz"
	"github.com/erpcore/authgate/internal/identity"
	"github.com/erpcore/authgate/internal/observability/metrics"
	"github.com/erpcore/authgate/internal/rbac"
	"github.com/erpcore/authgate/internal/tenant"
	"github.com/erpcore/authgate/internal/token"
)

// TenantAdmin is the write side of the tenant registry used by the admin
// endpoints.
type TenantAdmin interface {
	Create(ctx context.Context, tn *tenant.Tenant) error
	SetActive(ctx context.Context, tenantID string, active bool) error
}

// CookieConfig holds access token cookie parameters.
type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
}

// Handler holds HTTP handler dependencies
type Handler struct {
	codec       *token.Codec
	resolver    *tenant.Resolver
	engine      *authz.Engine
	identities  *identity.Service
	tenantAdmin TenantAdmin
	meter       *metrics.Meter
	auditLogger audit.Logger

	cookieName   string
	cookieDomain string
	cookieSecure bool
	tenantHeader string
}

// NewHandler creates a new handler
func NewHandler(
	codec *token.Codec,
	resolver *tenant.Resolver,
	engine *authz.Engine,
	identities *identity.Service,
	tenantAdmin TenantAdmin,
	meter *metrics.Meter,
	auditLogger audit.Logger,
	cookie CookieConfig,
	tenantHeader string,
) *Handler {
	cookieName := cookie.Name
	if cookieName == "" {
		cookieName = "authgate_token"
	}
	if tenantHeader == "" {
		tenantHeader = "X-Tenant-ID"
	}

	return &Handler{
		codec:        codec,
		resolver:     resolver,
		engine:       engine,
		identities:   identities,
		tenantAdmin:  tenantAdmin,
		meter:        meter,
		auditLogger:  auditLogger,
		cookieName:   cookieName,
		cookieDomain: cookie.Domain,
		cookieSecure: cookie.Secure,
		tenantHeader: tenantHeader,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAccess(authz.Requirement{}))
				r.Get("/me", h.Me)
				r.Post("/logout", h.Logout)
			})
		})

		// ERP module surfaces. Each group declares the permissions its
		// operations demand; enforcement happens entirely in RequireAccess.
		r.Route("/finance", func(r chi.Router) {
			r.With(h.RequireAccess(requirePerm(rbac.PermViewFinance))).
				Get("/", h.moduleIndex("finance"))
			r.With(h.RequireAccess(requirePerm(rbac.PermCreateFinance))).
				Post("/", h.moduleWrite("finance", "create"))
			r.With(h.RequireAccess(requirePerm(rbac.PermEditFinance))).
				Put("/{recordID}", h.moduleWrite("finance", "edit"))
			r.With(h.RequireAccess(requirePerm(rbac.PermDeleteFinance))).
				Delete("/{recordID}", h.moduleWrite("finance", "delete"))
			r.With(h.RequireAccess(requirePerm(rbac.PermApproveFinance))).
				Post("/{recordID}/approve", h.moduleWrite("finance", "approve"))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.With(h.RequireAccess(requirePerm(rbac.PermViewInventory))).
				Get("/", h.moduleIndex("inventory"))
			r.With(h.RequireAccess(requirePerm(rbac.PermCreateInventory))).
				Post("/", h.moduleWrite("inventory", "create"))
			r.With(h.RequireAccess(requirePerm(rbac.PermEditInventory))).
				Put("/{recordID}", h.moduleWrite("inventory", "edit"))
			r.With(h.RequireAccess(requirePerm(rbac.PermDeleteInventory))).
				Delete("/{recordID}", h.moduleWrite("inventory", "delete"))
		})

		r.Route("/hr", func(r chi.Router) {
			r.With(h.RequireAccess(requirePerm(rbac.PermViewHR))).
				Get("/", h.moduleIndex("hr"))
			r.With(h.RequireAccess(requirePerm(rbac.PermCreateHR))).
				Post("/", h.moduleWrite("hr", "create"))
			r.With(h.RequireAccess(requirePerm(rbac.PermEditHR))).
				Put("/{recordID}", h.moduleWrite("hr", "edit"))
			r.With(h.RequireAccess(requirePerm(rbac.PermDeleteHR))).
				Delete("/{recordID}", h.moduleWrite("hr", "delete"))
		})

		r.Route("/sales", func(r chi.Router) {
			r.With(h.RequireAccess(requirePerm(rbac.PermViewSales))).
				Get("/", h.moduleIndex("sales"))
			r.With(h.RequireAccess(requirePerm(rbac.PermCreateSales))).
				Post("/", h.moduleWrite("sales", "create"))
			r.With(h.RequireAccess(requirePerm(rbac.PermEditSales))).
				Put("/{recordID}", h.moduleWrite("sales", "edit"))
			r.With(h.RequireAccess(requirePerm(rbac.PermDeleteSales))).
				Delete("/{recordID}", h.moduleWrite("sales", "delete"))
		})

		r.Route("/reports", func(r chi.Router) {
			r.With(h.RequireAccess(requirePerm(rbac.PermViewReports))).
				Get("/", h.moduleIndex("reports"))
		})

		r.Route("/admin", func(r chi.Router) {
			r.With(h.RequireAccess(requirePerm(rbac.PermManageUsers))).
				Post("/users", h.CreateUser)
			r.With(h.RequireAccess(requirePerm(rbac.PermSystemSettings))).
				Post("/tenants", h.CreateTenant)
			r.With(h.RequireAccess(requirePerm(rbac.PermSystemSettings))).
				Post("/tenants/{tenantID}/deactivate", h.DeactivateTenant)
		})
	})

	return r
}

func requirePerm(perms ...rbac.Permission) authz.Requirement {
	return authz.Requirement{Permissions: perms}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Login authenticates a tenant-scoped user and issues an access and
// refresh token pair. The tenant comes from the request, never from the
// body, so a login is always pinned to the tenant context it was made in.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	tn, err := h.resolver.Resolve(ctx, r, nil)
	if err != nil {
		verdict := authz.DenyFromError(err)
		respondJSON(w, verdict.HTTPStatus(), map[string]string{
			"error":  http.StatusText(verdict.HTTPStatus()),
			"reason": string(verdict.Reason),
		})
		return
	}

	user, err := h.identities.Authenticate(ctx, tn.ID, req.Email, req.Password, getIPAddress(r))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	id := token.Identity{
		Subject:  user.ID,
		Email:    user.Email,
		Role:     user.Role,
		TenantID: tn.ID,
	}

	access, expiresAt, err := h.codec.Issue(ctx, id, token.TypeAccess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	refresh, _, err := h.codec.Issue(ctx, id, token.TypeRefresh)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	h.meter.RecordTokenIssued(ctx, string(token.TypeAccess))
	h.meter.RecordTokenIssued(ctx, string(token.TypeRefresh))

	h.setTokenCookie(w, access, expiresAt)
	w.Header().Set(h.tenantHeader, tn.ID)
	respondJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a valid refresh token for a fresh access token. An
// access token presented here is rejected as the wrong type, so a leaked
// short-lived token cannot be used to mint new credentials.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	meta := token.RequestMeta{IPAddress: getIPAddress(r), Path: r.URL.Path}
	claims, err := h.codec.Decode(ctx, req.RefreshToken, token.TypeRefresh, meta)
	if err != nil {
		verdict := authz.DenyFromError(err)
		respondJSON(w, verdict.HTTPStatus(), map[string]string{
			"error":  http.StatusText(verdict.HTTPStatus()),
			"reason": string(verdict.Reason),
		})
		return
	}

	id := token.Identity{
		Subject:  claims.Subject,
		Email:    claims.Email,
		Role:     claims.Role,
		TenantID: claims.TenantID,
	}

	access, expiresAt, err := h.codec.Issue(ctx, id, token.TypeAccess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	h.meter.RecordTokenIssued(ctx, string(token.TypeAccess))

	h.setTokenCookie(w, access, expiresAt)
	respondJSON(w, http.StatusOK, tokenResponse{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}

// Me returns the verified identity and resolved tenant for the caller.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	tn := GetTenant(r.Context())

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":     claims.Subject,
		"email":       claims.Email,
		"role":        claims.Role,
		"permissions": permissionStrings(claims.Role),
		"tenant": map[string]any{
			"id":     tn.ID,
			"name":   tn.Name,
			"domain": tn.Domain,
		},
	})
}

// Logout clears the token cookie. Tokens themselves stay valid until
// expiry; revocation is a non-goal of the stateless codec.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearTokenCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser provisions a user in the caller's tenant.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tn := GetTenant(ctx)

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid role")
		return
	}

	user, err := h.identities.ProvisionUser(ctx, tn.ID, req.Email, req.Password, role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	})
}

type createTenantRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// CreateTenant registers a new tenant.
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" || req.Name == "" || req.Domain == "" {
		respondError(w, http.StatusBadRequest, "id, name and domain are required")
		return
	}

	tn := &tenant.Tenant{
		ID:       req.ID,
		Name:     req.Name,
		Domain:   req.Domain,
		IsActive: true,
		Settings: map[string]any{},
	}
	if err := h.tenantAdmin.Create(ctx, tn); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create tenant")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":     tn.ID,
		"name":   tn.Name,
		"domain": tn.Domain,
	})
}

// DeactivateTenant marks a tenant inactive and drops it from the resolver
// cache so the change takes effect on the next request, not at TTL expiry.
func (h *Handler) DeactivateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "tenantID")

	if err := h.tenantAdmin.SetActive(ctx, tenantID, false); err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to deactivate tenant")
		return
	}
	h.resolver.Invalidate(tenantID)

	respondJSON(w, http.StatusOK, map[string]string{
		"id":     tenantID,
		"status": "inactive",
	})
}

// moduleIndex and moduleWrite are the enforcement reference surface for
// the ERP modules. The resource data itself lives in the downstream
// services; these endpoints prove the caller cleared the pipeline.
func (h *Handler) moduleIndex(module string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		tn := GetTenant(r.Context())
		respondJSON(w, http.StatusOK, map[string]any{
			"module":    module,
			"tenant_id": tn.ID,
			"user_id":   claims.Subject,
			"records":   []any{},
		})
	}
}

func (h *Handler) moduleWrite(module, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tn := GetTenant(r.Context())
		resp := map[string]any{
			"module":    module,
			"action":    action,
			"tenant_id": tn.ID,
			"status":    "accepted",
		}
		if id := chi.URLParam(r, "recordID"); id != "" {
			resp["record_id"] = id
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

func permissionStrings(role rbac.Role) []string {
	perms := rbac.PermissionsFor(role)
	out := make([]string, 0, len(perms))
	for p := range perms {
		out = append(out, string(p))
	}
	return out
}

// Helper functions
func (h *Handler) setTokenCookie(w http.ResponseWriter, value string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.cookieDomain,
		Secure:   h.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Expires:  expiresAt,
	})
}

func (h *Handler) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   h.cookieName,
		Value:  "",
		Path:   "/",
		Domain: h.cookieDomain,
		MaxAge: -1,
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
