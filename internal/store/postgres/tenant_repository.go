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

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/erpcore/authgate/internal/tenant"
)

// TenantRepository implements tenant.Registry
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Lookup retrieves a tenant by ID
func (r *TenantRepository) Lookup(ctx context.Context, tenantID string) (*tenant.Tenant, error) {
	var tn tenant.Tenant

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, name, domain, is_active, settings, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`, tenantID).Scan(
		&tn.ID, &tn.Name, &tn.Domain, &tn.IsActive, &tn.Settings, &tn.CreatedAt, &tn.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return &tn, nil
}

// Create creates a new tenant
func (r *TenantRepository) Create(ctx context.Context, tn *tenant.Tenant) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO tenants (id, name, domain, is_active, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, tn.ID, tn.Name, tn.Domain, tn.IsActive, tn.Settings, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert tenant: %w", err)
	}

	tn.CreatedAt = now
	tn.UpdatedAt = now

	return nil
}

// SetActive flips a tenant's active flag
func (r *TenantRepository) SetActive(ctx context.Context, tenantID string, active bool) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE tenants SET is_active = $2, updated_at = NOW()
		WHERE id = $1
	`, tenantID, active)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}

	if result.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}

	return nil
}
