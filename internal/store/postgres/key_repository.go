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
	"fmt"
	"time"

	"github.com/erpcore/authgate/internal/token"
)

// KeyRepository implements token.KeyProvider on top of the signing_keys
// table. The newest non-expired key signs, all non-expired keys verify.
type KeyRepository struct {
	db *DB
}

// NewKeyRepository creates a new key repository
func NewKeyRepository(db *DB) *KeyRepository {
	return &KeyRepository{db: db}
}

// Keys returns all valid signing keys, newest first
func (r *KeyRepository) Keys(ctx context.Context) ([][]byte, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT secret
		FROM signing_keys
		WHERE expires_at > $1
		ORDER BY created_at DESC
	`, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list signing keys: %w", err)
	}
	defer rows.Close()

	var keys [][]byte
	for rows.Next() {
		var secret string
		if err := rows.Scan(&secret); err != nil {
			return nil, fmt.Errorf("failed to scan signing key: %w", err)
		}
		keys = append(keys, []byte(secret))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read signing keys: %w", err)
	}

	if len(keys) == 0 {
		return nil, token.ErrNoKeys
	}

	return keys, nil
}

// Create stores a new signing key
func (r *KeyRepository) Create(ctx context.Context, id, secret string, expiresAt time.Time) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO signing_keys (id, secret, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, id, secret, time.Now(), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to create signing key: %w", err)
	}

	return nil
}
