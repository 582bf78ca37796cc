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

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Config holds metrics configuration
type Config struct {
	Enabled bool
}

// Meter wraps OpenTelemetry meter and the service's authorization
// instruments.
type Meter struct {
	meter metric.Meter

	decisions    metric.Int64Counter
	tokensIssued metric.Int64Counter
	cacheLookups metric.Int64Counter
}

// New creates a new meter instance
func New(ctx context.Context, cfg Config, serviceName string) (*Meter, error) {
	var meter metric.Meter
	if cfg.Enabled {
		meter = otel.Meter(serviceName)
	} else {
		meter = otel.Meter("noop")
	}

	m := &Meter{meter: meter}

	var err error
	m.decisions, err = meter.Int64Counter(
		"authz_decisions_total",
		metric.WithDescription("Authorization decisions by outcome and deny reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create decisions counter: %w", err)
	}

	m.tokensIssued, err = meter.Int64Counter(
		"tokens_issued_total",
		metric.WithDescription("Tokens issued by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokens counter: %w", err)
	}

	m.cacheLookups, err = meter.Int64Counter(
		"tenant_cache_lookups_total",
		metric.WithDescription("Tenant cache lookups by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache counter: %w", err)
	}

	return m, nil
}

// GetMeter returns the underlying meter
func (m *Meter) GetMeter() metric.Meter {
	return m.meter
}

// RecordDecision records an authorization verdict. reason is empty for
// allows.
func (m *Meter) RecordDecision(ctx context.Context, allowed bool, reason string) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	attrs := []attribute.KeyValue{attribute.String("outcome", outcome)}
	if reason != "" {
		attrs = append(attrs, attribute.String("reason", reason))
	}
	m.decisions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTokenIssued records a token issuance
func (m *Meter) RecordTokenIssued(ctx context.Context, tokenType string) {
	m.tokensIssued.Add(ctx, 1, metric.WithAttributes(
		attribute.String("token_type", tokenType),
	))
}

// RecordCacheLookup records a tenant cache hit or miss
func (m *Meter) RecordCacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}

// CreateHistogram creates a new histogram metric
func (m *Meter) CreateHistogram(name, description, unit string) (metric.Float64Histogram, error) {
	histogram, err := m.meter.Float64Histogram(
		name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram %s: %w", name, err)
	}
	return histogram, nil
}
