package ports

import (
	"context"
	"time"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

// Summarizer produces a natural-language summary of an event history.
type Summarizer interface {
	Summarize(ctx context.Context, events []domain.TrackingEvent) (*domain.Summary, error)
}

// TrackingLocker serializes refreshes of the same tracking number.
type TrackingLocker interface {
	// Lock blocks until the key is held or ctx ends. The returned func releases it.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// StatusNotifier publishes status transitions for downstream messaging.
type StatusNotifier interface {
	PublishStatusChange(ctx context.Context, change domain.StatusChange) error
}

// RateLimitResult is the outcome of a single rate-limit check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// RateLimiter is a sliding-window request counter.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error)
}
