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

// Package guard provides the advisory, client-side mirror of the
// authorization decision engine. It gates navigation before a server round
// trip using a previously-fetched claim and tenant held in memory.
//
// The guard is explicitly non-authoritative: every transition it permits
// is re-validated by the server-side engine. A guard ALLOW is a UX
// optimization, never a security boundary.
package guard

import (
	"sync"

	"github.com/erpcore/authgate/internal/authz"
	"github.com/erpcore/authgate/internal/tenant"
	"github.com/erpcore/authgate/internal/token"
)

// State is the guard's evaluation state.
type State int

const (
	// StateLoading means the identity has not been fetched yet.
	StateLoading State = iota

	// StateUnauthenticated means the fetch failed or returned no claim.
	StateUnauthenticated

	// StateAuthorized and StateRejected mean the fetch succeeded and the
	// requirement was evaluated.
	StateAuthorized
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthorized:
		return "authorized"
	case StateRejected:
		return "rejected"
	}
	return "unknown"
}

// RedirectFunc performs a navigation side effect, e.g. pushing the login
// route. The guard guarantees it is never invoked for an exempt
// destination and never fired twice in a row for the same target.
type RedirectFunc func(destination string)

// Guard mirrors the role and permission checks of the decision engine over
// in-memory identity state. Safe for concurrent use.
type Guard struct {
	mu       sync.Mutex
	state    State
	claims   *token.Claims
	tn       *tenant.Tenant
	engine   *authz.Engine
	redirect RedirectFunc

	loginPath        string
	unauthorizedPath string
	exempt           map[string]struct{}
	lastRedirect     string
}

// Config holds guard construction parameters.
type Config struct {
	// LoginPath is the redirect target for unauthenticated callers.
	// Defaults to /login.
	LoginPath string

	// UnauthorizedPath is the redirect target for rejected callers.
	// Defaults to /unauthorized.
	UnauthorizedPath string

	// ExemptPaths are destinations the guard never redirects away from.
	// LoginPath and UnauthorizedPath are always exempt, which is what
	// breaks the evaluate → redirect → re-evaluate cycle.
	ExemptPaths []string
}

// New creates a route guard.
func New(engine *authz.Engine, redirect RedirectFunc, cfg Config) *Guard {
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	unauthorizedPath := cfg.UnauthorizedPath
	if unauthorizedPath == "" {
		unauthorizedPath = "/unauthorized"
	}

	exempt := map[string]struct{}{
		loginPath:        {},
		unauthorizedPath: {},
	}
	for _, p := range cfg.ExemptPaths {
		exempt[p] = struct{}{}
	}

	return &Guard{
		state:            StateLoading,
		engine:           engine,
		redirect:         redirect,
		loginPath:        loginPath,
		unauthorizedPath: unauthorizedPath,
		exempt:           exempt,
	}
}

// State returns the current guard state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// SetIdentity installs a fetched claim and tenant. Passing a nil claim
// marks the fetch as failed.
func (g *Guard) SetIdentity(claims *token.Claims, tn *tenant.Tenant) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.claims = claims
	g.tn = tn
	if claims == nil {
		g.state = StateUnauthenticated
	} else {
		// Re-evaluated against a requirement on the next Evaluate call.
		g.state = StateLoading
	}
	g.lastRedirect = ""
}

// Clear resets the guard to its initial state, e.g. on logout.
func (g *Guard) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateLoading
	g.claims = nil
	g.tn = nil
	g.lastRedirect = ""
}

// Evaluate decides whether navigation to destination is advisedly allowed
// under req, firing the redirect side effect on a deny. Redirects are
// idempotent: a repeat verdict for the same target does not re-fire, and
// exempt destinations are never redirected away from.
func (g *Guard) Evaluate(req authz.Requirement, destination string) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.exempt[destination]; ok {
		// Exempt destinations render regardless of identity state.
		return g.state
	}

	if g.claims == nil {
		g.state = StateUnauthenticated
		g.fireRedirect(g.loginPath)
		return g.state
	}

	verdict := g.engine.Authorize(g.claims, g.tn, req)
	if verdict.Allowed {
		g.state = StateAuthorized
		g.lastRedirect = ""
		return g.state
	}

	g.state = StateRejected
	g.fireRedirect(g.unauthorizedPath)
	return g.state
}

// fireRedirect invokes the redirect callback at most once per target.
// Callers hold g.mu.
func (g *Guard) fireRedirect(target string) {
	if g.redirect == nil || g.lastRedirect == target {
		return
	}
	if _, ok := g.exempt[target]; !ok {
		return
	}
	g.lastRedirect = target
	g.redirect(target)
}
