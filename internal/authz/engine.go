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

package authz

import (
	"github.com/erpcore/authgate/internal/rbac"
	"github.com/erpcore/authgate/internal/tenant"
	"github.com/erpcore/authgate/internal/token"
)

// Requirement is declared by each protected operation: optional acceptable
// roles, optional required permissions, and the AND/OR selector. The zero
// value requires only a valid ACCESS token and an active, matching tenant.
type Requirement struct {
	// Roles lists acceptable roles. Empty means any role.
	Roles []rbac.Role

	// Permissions lists required permissions. Empty means none required.
	Permissions []rbac.Permission

	// RequireAll selects AND semantics over Permissions. The default is
	// OR: any one listed permission suffices.
	RequireAll bool
}

// Engine renders allow/deny decisions. It is stateless: the same
// (claims, tenant, requirement) triple always yields the same verdict.
type Engine struct{}

// NewEngine creates a decision engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Authorize evaluates the requirement against a validated claim and a
// resolved tenant. Evaluation short-circuits on the first failing check,
// each cause reported distinctly:
//
//  1. claim present and of type ACCESS
//  2. tenant present, active, and matching the token-bound tenant
//  3. claim role among the acceptable roles, when listed
//  4. required permissions held under the selected AND/OR semantics
func (e *Engine) Authorize(claims *token.Claims, tn *tenant.Tenant, req Requirement) Verdict {
	if claims == nil {
		return Deny(ReasonNoToken)
	}
	if claims.TokenType != token.TypeAccess {
		return Deny(ReasonWrongTokenType)
	}

	if tn == nil {
		return Deny(ReasonTenantMissing)
	}
	if !tn.IsActive {
		return Deny(ReasonTenantInactive)
	}
	if claims.TenantID != "" && claims.TenantID != tn.ID {
		return Deny(ReasonTenantMismatch)
	}

	if len(req.Roles) > 0 && !roleAllowed(claims.Role, req.Roles) {
		return Deny(ReasonRoleNotAllowed)
	}

	if len(req.Permissions) > 0 {
		grants := rbac.PermissionsFor(claims.Role)
		if req.RequireAll {
			if !grants.HasAll(req.Permissions...) {
				return Deny(ReasonPermissionDenied)
			}
		} else {
			if !grants.HasAny(req.Permissions...) {
				return Deny(ReasonPermissionDenied)
			}
		}
	}

	return Allow()
}

func roleAllowed(role rbac.Role, allowed []rbac.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
