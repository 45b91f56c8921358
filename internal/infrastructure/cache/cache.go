// Package cache provides the analytics report cache. Reports are stored as
// opaque JSON payloads keyed by query parameters; a miss simply recomputes.
package cache

import (
	"context"
	"time"
)

// AnalyticsCache stores serialized analytics reports with a TTL.
type AnalyticsCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	// Invalidate drops every cached report. Called after a write that
	// changes sales history.
	Invalidate(ctx context.Context) error
}

// NoopAnalyticsCache is used when Redis is disabled; every Get is a miss.
type NoopAnalyticsCache struct{}

func (NoopAnalyticsCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopAnalyticsCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

func (NoopAnalyticsCache) Invalidate(_ context.Context) error {
	return nil
}
