package github

import (
	"context"

	"golang.org/x/time/rate"
)

// MutationRate is the throttle rate for state-mutating calls: at most one
// PATCH/PUT/POST per second. Read-only calls are not throttled.
const MutationRate = 1.0

// Throttle enforces a minimum interval between state-mutating API calls.
// It is owned by the Client rather than being process-global state, so each
// organization credential carries its own pacing.
type Throttle struct {
	bucket *rate.Limiter
}

// NewThrottle creates a throttle paced at MutationRate.
func NewThrottle() *Throttle {
	return &Throttle{
		bucket: rate.NewLimiter(rate.Limit(MutationRate), 1),
	}
}

// Wait blocks until the inter-call interval has elapsed since the previous
// mutating call, or the context is cancelled. The first call returns
// immediately.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.bucket.Wait(ctx)
}
