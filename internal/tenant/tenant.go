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

package tenant

import (
	"context"
	"errors"
	"time"
)

// Domain errors. Mismatch is a security violation, not a validation
// failure; the resolver logs it at elevated severity.
var (
	ErrTenantMissing  = errors.New("no tenant identifier in request")
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantInactive = errors.New("tenant is not active")
	ErrTenantMismatch = errors.New("tenant does not match token")
)

// Tenant is the resolved, validated tenant context for a request.
// Constructed per request by the Resolver; not persisted by this
// subsystem.
type Tenant struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Domain    string         `json:"domain"`
	IsActive  bool           `json:"is_active"`
	Settings  map[string]any `json:"settings,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Registry is the external tenant store collaborator. Lookup returns
// ErrTenantNotFound for unknown identifiers; any other error is treated by
// the resolver as an outage and failed closed.
type Registry interface {
	Lookup(ctx context.Context, tenantID string) (*Tenant, error)
}
