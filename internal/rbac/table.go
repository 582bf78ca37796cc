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

// Set is an unordered collection of permissions. Sets handed out by this
// package are shared and must be treated as read-only.
type Set map[Permission]struct{}

// NewSet builds a Set from the given permissions.
func NewSet(perms ...Permission) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether p is in the set.
func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// HasAny reports whether at least one of perms is in the set.
// An empty perms list yields false.
func (s Set) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// HasAll reports whether every one of perms is in the set.
// An empty perms list yields true.
func (s Set) HasAll(perms ...Permission) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// rolePermissions is the process-wide role → permission table. It is
// constructed once at init and never mutated afterwards; changing a grant
// requires a new deployment. Every enumerated role MUST have an entry;
// table tests enforce completeness against Roles().
var rolePermissions = map[Role]Set{
	RoleAdmin: NewSet(Universe()...),

	RoleManager: NewSet(
		PermViewFinance, PermViewInventory, PermViewHR, PermViewSales,
		PermViewReports,
		PermCreateFinance, PermCreateInventory,
		PermEditFinance, PermEditInventory,
	),

	RoleFinance: NewSet(
		PermViewFinance, PermCreateFinance, PermEditFinance,
		PermDeleteFinance, PermApproveFinance,
	),

	RoleInventory: NewSet(
		PermViewInventory, PermCreateInventory, PermEditInventory,
		PermDeleteInventory,
	),

	RoleHR: NewSet(
		PermViewHR, PermCreateHR, PermEditHR, PermDeleteHR,
	),

	RoleSales: NewSet(
		PermViewSales, PermCreateSales, PermEditSales, PermDeleteSales,
	),

	RoleViewer: NewSet(
		PermViewFinance, PermViewInventory, PermViewHR, PermViewSales,
	),
}

// PermissionsFor returns the permission set granted to role. It is total
// over the closed role enumeration; an unknown role gets the empty set,
// which denies everything.
func PermissionsFor(role Role) Set {
	switch role {
	case RoleAdmin, RoleManager, RoleFinance, RoleInventory, RoleHR, RoleSales, RoleViewer:
		return rolePermissions[role]
	}
	return Set{}
}

// HasPermission reports whether role grants p.
func HasPermission(role Role, p Permission) bool {
	return PermissionsFor(role).Has(p)
}

// HasAny reports whether role grants at least one of perms.
func HasAny(role Role, perms ...Permission) bool {
	return PermissionsFor(role).HasAny(perms...)
}

// HasAll reports whether role grants every one of perms.
func HasAll(role Role, perms ...Permission) bool {
	return PermissionsFor(role).HasAll(perms...)
}
