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

// Permission is an atomic, enumerated capability. Permissions are
// partitioned by ERP module; the admin partition covers platform
// management capabilities.
type Permission string

// Finance permissions
const (
	PermViewFinance    Permission = "view_finance"
	PermCreateFinance  Permission = "create_finance"
	PermEditFinance    Permission = "edit_finance"
	PermDeleteFinance  Permission = "delete_finance"
	PermApproveFinance Permission = "approve_finance"
)

// Inventory permissions
const (
	PermViewInventory   Permission = "view_inventory"
	PermCreateInventory Permission = "create_inventory"
	PermEditInventory   Permission = "edit_inventory"
	PermDeleteInventory Permission = "delete_inventory"
)

// HR permissions
const (
	PermViewHR   Permission = "view_hr"
	PermCreateHR Permission = "create_hr"
	PermEditHR   Permission = "edit_hr"
	PermDeleteHR Permission = "delete_hr"
)

// Sales permissions
const (
	PermViewSales   Permission = "view_sales"
	PermCreateSales Permission = "create_sales"
	PermEditSales   Permission = "edit_sales"
	PermDeleteSales Permission = "delete_sales"
)

// Admin permissions
const (
	PermManageUsers    Permission = "manage_users"
	PermManageRoles    Permission = "manage_roles"
	PermViewReports    Permission = "view_reports"
	PermSystemSettings Permission = "system_settings"
)

// Universe returns every defined permission. The returned slice is a fresh
// copy on each call.
func Universe() []Permission {
	return []Permission{
		PermViewFinance, PermCreateFinance, PermEditFinance, PermDeleteFinance, PermApproveFinance,
		PermViewInventory, PermCreateInventory, PermEditInventory, PermDeleteInventory,
		PermViewHR, PermCreateHR, PermEditHR, PermDeleteHR,
		PermViewSales, PermCreateSales, PermEditSales, PermDeleteSales,
		PermManageUsers, PermManageRoles, PermViewReports, PermSystemSettings,
	}
}

func (p Permission) String() string {
	return string(p)
}
