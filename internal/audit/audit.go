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

package audit

import (
	"context"
	"log/slog"
	"time"
)

// Event types
const (
	TypeTokenIssued    = "token_issued"
	TypeTokenDecoded   = "token_decoded"
	TypeTokenRejected  = "token_rejected"
	TypeDecisionAllow  = "decision_allow"
	TypeDecisionDeny   = "decision_deny"
	TypeTenantMismatch = "tenant_mismatch"
	TypeLoginSuccess   = "login_success"
	TypeLoginFailed    = "login_failed"
)

// Event represents an auditable authorization action. Raw token material
// must never be placed in an Event; only derived facts (actor, reason) are
// recorded.
type Event struct {
	Type      string
	Actor     string
	TenantID  string
	Path      string
	Decision  string
	Reason    string
	IPAddress string
	Metadata  map[string]any
	Timestamp time.Time
}

// Logger defines the interface for the audit sink.
type Logger interface {
	Log(ctx context.Context, event Event)
}

// SlogLogger implements Logger on top of the process slog logger.
type SlogLogger struct{}

// NewSlogLogger creates a new audit logger.
func NewSlogLogger() *SlogLogger {
	return &SlogLogger{}
}

// Log records an audit event.
func (l *SlogLogger) Log(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	attrs := []any{
		slog.String("audit_type", event.Type),
		slog.Time("timestamp", event.Timestamp),
	}

	if event.Actor != "" {
		attrs = append(attrs, slog.String("actor", event.Actor))
	}
	if event.TenantID != "" {
		attrs = append(attrs, slog.String("tenant_id", event.TenantID))
	}
	if event.Path != "" {
		attrs = append(attrs, slog.String("path", event.Path))
	}
	if event.Decision != "" {
		attrs = append(attrs, slog.String("decision", event.Decision))
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("reason", event.Reason))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}

	if len(event.Metadata) > 0 {
		group := []any{}
		for k, v := range event.Metadata {
			if isSecret(k) {
				v = "[REDACTED]"
			}
			group = append(group, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Group("metadata", group...))
	}

	// Tenant mismatches indicate probable spoofing, not misconfiguration.
	level := slog.LevelInfo
	if event.Type == TypeTenantMismatch {
		level = slog.LevelWarn
	}

	slog.Log(ctx, level, "AUDIT_EVENT", append(attrs, slog.String("component", "audit"))...)
}

// isSecret checks if a metadata key likely carries a secret.
func isSecret(key string) bool {
	secrets := []string{"password", "secret", "token", "key", "authorization", "cookie"}
	for _, s := range secrets {
		if key == s {
			return true
		}
	}
	return false
}
