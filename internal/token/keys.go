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
	"context"
	"errors"
)

// ErrNoKeys is returned when the key material source has no currently-valid
// keys. The codec treats it as a verification failure, never as a bypass.
var ErrNoKeys = errors.New("no valid signing keys available")

// KeyProvider supplies the HMAC key set for signing and verification.
// The first key signs newly issued tokens; every returned key is accepted
// for verification, which is what makes rotation non-disruptive.
type KeyProvider interface {
	Keys(ctx context.Context) ([][]byte, error)
}

// StaticKeys is a KeyProvider backed by configuration: one active signing
// key plus zero or more previous keys still accepted for verification.
type StaticKeys struct {
	keys [][]byte
}

// NewStaticKeys creates a provider from the active key and any previous
// keys kept valid during rotation.
func NewStaticKeys(active []byte, previous ...[]byte) *StaticKeys {
	keys := make([][]byte, 0, 1+len(previous))
	keys = append(keys, active)
	keys = append(keys, previous...)
	return &StaticKeys{keys: keys}
}

// Keys returns the configured key set.
func (s *StaticKeys) Keys(ctx context.Context) ([][]byte, error) {
	if len(s.keys) == 0 || len(s.keys[0]) == 0 {
		return nil, ErrNoKeys
	}
	return s.keys, nil
}
