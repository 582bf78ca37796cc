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

package token

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/erpcore/authgate/internal/rbac"
)

// Type distinguishes the two token TTL classes. Only ACCESS tokens may be
// presented for resource access; REFRESH tokens are accepted exclusively by
// the refresh exchange.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Claims is the verified payload of an identity token. It is produced by
// Codec.Decode from untrusted wire bytes, never mutated afterwards, and
// discarded at request end.
type Claims struct {
	jwt.RegisteredClaims

	Email     string    `json:"email"`
	Role      rbac.Role `json:"role"`
	TenantID  string    `json:"tenant_id,omitempty"`
	TokenType Type      `json:"token_type"`
}

// Identity carries the caller attributes stamped into an issued token.
type Identity struct {
	Subject  string
	Email    string
	Role     rbac.Role
	TenantID string
}
