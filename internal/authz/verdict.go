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
	"errors"
	"net/http"

	"github.com/erpcore/authgate/internal/tenant"
	"github.com/erpcore/authgate/internal/token"
)

// DenyReason enumerates every distinct cause for a DENY verdict. Reasons
// are recorded in audit events; user-facing responses carry only a stable,
// non-leaking message.
type DenyReason string

const (
	ReasonNoToken          DenyReason = "NO_TOKEN"
	ReasonTokenInvalid     DenyReason = "TOKEN_INVALID"
	ReasonTokenExpired     DenyReason = "TOKEN_EXPIRED"
	ReasonWrongTokenType   DenyReason = "WRONG_TOKEN_TYPE"
	ReasonTenantMissing    DenyReason = "TENANT_MISSING"
	ReasonTenantNotFound   DenyReason = "TENANT_NOT_FOUND"
	ReasonTenantInactive   DenyReason = "TENANT_INACTIVE"
	ReasonTenantMismatch   DenyReason = "TENANT_MISMATCH"
	ReasonRoleNotAllowed   DenyReason = "ROLE_NOT_ALLOWED"
	ReasonPermissionDenied DenyReason = "PERMISSION_DENIED"
)

// Verdict is the outcome of an authorization check. Verdicts are computed
// per request and never cached.
type Verdict struct {
	Allowed bool
	Reason  DenyReason
}

// Allow is the single allowing verdict.
func Allow() Verdict {
	return Verdict{Allowed: true}
}

// Deny creates a denying verdict with the given reason.
func Deny(reason DenyReason) Verdict {
	return Verdict{Reason: reason}
}

// HTTPStatus maps a verdict to the fixed HTTP contract: token causes are
// 401, tenant/role/permission causes are 403, ALLOW is 200.
func (v Verdict) HTTPStatus() int {
	if v.Allowed {
		return http.StatusOK
	}
	switch v.Reason {
	case ReasonNoToken, ReasonTokenInvalid, ReasonTokenExpired, ReasonWrongTokenType:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}

// DenyFromError maps a token or tenant domain error to its deny verdict.
// Unknown errors fail closed as TOKEN_INVALID.
func DenyFromError(err error) Verdict {
	switch {
	case errors.Is(err, token.ErrTokenMissing):
		return Deny(ReasonNoToken)
	case errors.Is(err, token.ErrTokenExpired):
		return Deny(ReasonTokenExpired)
	case errors.Is(err, token.ErrWrongType):
		return Deny(ReasonWrongTokenType)
	case errors.Is(err, token.ErrTokenInvalid):
		return Deny(ReasonTokenInvalid)
	case errors.Is(err, tenant.ErrTenantMissing):
		return Deny(ReasonTenantMissing)
	case errors.Is(err, tenant.ErrTenantNotFound):
		return Deny(ReasonTenantNotFound)
	case errors.Is(err, tenant.ErrTenantInactive):
		return Deny(ReasonTenantInactive)
	case errors.Is(err, tenant.ErrTenantMismatch):
		return Deny(ReasonTenantMismatch)
	}
	return Deny(ReasonTokenInvalid)
}
