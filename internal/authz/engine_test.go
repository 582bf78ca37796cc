package authz

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/erpcore/authgate/internal/rbac"
	"github.com/erpcore/authgate/internal/tenant"
	"github.com/erpcore/authgate/internal/token"
)

func accessClaims(role rbac.Role, tenantID string) *token.Claims {
	return &token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		Email:            "user@acme.test",
		Role:             role,
		TenantID:         tenantID,
		TokenType:        token.TypeAccess,
	}
}

func tenantNamed(id string) *tenant.Tenant {
	return &tenant.Tenant{ID: id, Name: "Acme Corp", IsActive: true}
}

// TestPurpose: Validates the deny short-circuit order and the distinct reason for each failing check.
// Scope: Unit Test
// Security: Every deny cause must be reported distinctly for audits and HTTP mapping
// Expected: Each scenario yields exactly its documented reason.
// Test Case ID: ENG-01
func TestAuthz_Engine_DenyReasons(t *testing.T) {
	e := NewEngine()

	refresh := accessClaims(rbac.RoleAdmin, "acme")
	refresh.TokenType = token.TypeRefresh

	inactive := tenantNamed("acme")
	inactive.IsActive = false

	tests := []struct {
		name   string
		claims *token.Claims
		tenant *tenant.Tenant
		req    Requirement
		reason DenyReason
	}{
		{"nil claims", nil, tenantNamed("acme"), Requirement{}, ReasonNoToken},
		{"refresh token", refresh, tenantNamed("acme"), Requirement{}, ReasonWrongTokenType},
		{"nil tenant", accessClaims(rbac.RoleAdmin, "acme"), nil, Requirement{}, ReasonTenantMissing},
		{"inactive tenant", accessClaims(rbac.RoleAdmin, "acme"), inactive, Requirement{}, ReasonTenantInactive},
		{"tenant mismatch", accessClaims(rbac.RoleAdmin, "acme"), tenantNamed("globex"), Requirement{}, ReasonTenantMismatch},
		{
			"role not allowed",
			accessClaims(rbac.RoleViewer, "acme"),
			tenantNamed("acme"),
			Requirement{Roles: []rbac.Role{rbac.RoleAdmin, rbac.RoleManager}},
			ReasonRoleNotAllowed,
		},
		{
			"permission denied",
			accessClaims(rbac.RoleViewer, "acme"),
			tenantNamed("acme"),
			Requirement{Permissions: []rbac.Permission{rbac.PermApproveFinance}},
			ReasonPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := e.Authorize(tt.claims, tt.tenant, tt.req)
			assert.False(t, verdict.Allowed)
			assert.Equal(t, tt.reason, verdict.Reason)
		})
	}
}

// TestPurpose: Validates the allow path for role checks, permission checks and the zero requirement.
// Scope: Unit Test
// Security: Legitimate callers must pass; over-denial breaks the ERP surface
// Expected: All scenarios yield ALLOW with no reason.
// Test Case ID: ENG-02
func TestAuthz_Engine_Allows(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name   string
		claims *token.Claims
		req    Requirement
	}{
		{"zero requirement", accessClaims(rbac.RoleViewer, "acme"), Requirement{}},
		{"role listed", accessClaims(rbac.RoleManager, "acme"), Requirement{Roles: []rbac.Role{rbac.RoleAdmin, rbac.RoleManager}}},
		{"permission held", accessClaims(rbac.RoleFinance, "acme"), Requirement{Permissions: []rbac.Permission{rbac.PermApproveFinance}}},
		{
			"any-of permissions",
			accessClaims(rbac.RoleViewer, "acme"),
			Requirement{Permissions: []rbac.Permission{rbac.PermApproveFinance, rbac.PermViewFinance}},
		},
		{"admin everything", accessClaims(rbac.RoleAdmin, "acme"), Requirement{
			Roles:       []rbac.Role{rbac.RoleAdmin},
			Permissions: []rbac.Permission{rbac.PermSystemSettings, rbac.PermManageRoles},
			RequireAll:  true,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := e.Authorize(tt.claims, tenantNamed("acme"), tt.req)
			assert.True(t, verdict.Allowed)
			assert.Empty(t, verdict.Reason)
		})
	}
}

// TestPurpose: Validates AND versus OR semantics over the permission list.
// Scope: Unit Test
// Security: Mixing up the selector silently widens or narrows access
// Expected: Manager passes any-of but fails all-of for a view plus approve pair.
// Test Case ID: ENG-03
func TestAuthz_Engine_RequireAll(t *testing.T) {
	e := NewEngine()
	claims := accessClaims(rbac.RoleManager, "acme")
	perms := []rbac.Permission{rbac.PermViewFinance, rbac.PermApproveFinance}

	anyOf := e.Authorize(claims, tenantNamed("acme"), Requirement{Permissions: perms})
	assert.True(t, anyOf.Allowed)

	allOf := e.Authorize(claims, tenantNamed("acme"), Requirement{Permissions: perms, RequireAll: true})
	assert.False(t, allOf.Allowed)
	assert.Equal(t, ReasonPermissionDenied, allOf.Reason)
}

// TestPurpose: Validates that a token without a bound tenant authorizes in any active tenant.
// Scope: Unit Test
// Security: Tenant pinning applies only when the token carries a tenant
// Expected: Empty claim tenant allows against any resolved tenant.
// Test Case ID: ENG-04
func TestAuthz_Engine_UnpinnedToken(t *testing.T) {
	e := NewEngine()
	claims := accessClaims(rbac.RoleAdmin, "")

	verdict := e.Authorize(claims, tenantNamed("globex"), Requirement{})
	assert.True(t, verdict.Allowed)
}

// TestPurpose: Validates decision determinism: repeated evaluation of the same triple yields the same verdict.
// Scope: Unit Test
// Security: Verdicts are computed per request and must be reproducible for audits
// Expected: One hundred evaluations agree.
// Test Case ID: ENG-05
func TestAuthz_Engine_Deterministic(t *testing.T) {
	e := NewEngine()
	claims := accessClaims(rbac.RoleSales, "acme")
	req := Requirement{Permissions: []rbac.Permission{rbac.PermCreateSales}}

	first := e.Authorize(claims, tenantNamed("acme"), req)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, e.Authorize(claims, tenantNamed("acme"), req))
	}
}
