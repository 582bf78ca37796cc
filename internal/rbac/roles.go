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

package rbac

import "fmt"

// Role is a closed enumeration of caller roles. Adding a role requires
// touching every exhaustive switch in this package; there is deliberately
// no default/empty fallback.
type Role string

const (
	// RoleAdmin holds every defined permission.
	RoleAdmin Role = "admin"

	// RoleManager holds cross-module view permissions plus create/edit
	// rights in finance and inventory.
	RoleManager Role = "manager"

	// RoleFinance, RoleInventory, RoleHR and RoleSales are module-scoped
	// operator roles.
	RoleFinance   Role = "finance"
	RoleInventory Role = "inventory"
	RoleHR        Role = "hr"
	RoleSales     Role = "sales"

	// RoleViewer holds read-only access across business modules.
	RoleViewer Role = "viewer"
)

// Roles returns every defined role in declaration order.
func Roles() []Role {
	return []Role{
		RoleAdmin,
		RoleManager,
		RoleFinance,
		RoleInventory,
		RoleHR,
		RoleSales,
		RoleViewer,
	}
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleFinance, RoleInventory, RoleHR, RoleSales, RoleViewer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a wire value into a Role. Unknown values are rejected
// rather than defaulted; a token carrying an unrecognized role is invalid.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
