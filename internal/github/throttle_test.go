package github

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottle_EnforcesInterval(t *testing.T) {
	throttle := NewThrottle()
	ctx := context.Background()

	require.NoError(t, throttle.Wait(ctx))
	start := time.Now()
	require.NoError(t, throttle.Wait(ctx))
	elapsed := time.Since(start)

	// Two back-to-back mutating calls must be at least the inter-call
	// interval apart. Allow scheduler slack below the exact second.
	assert.GreaterOrEqual(t, elapsed, 900*time.Millisecond)
}

func TestThrottle_FirstCallImmediate(t *testing.T) {
	throttle := NewThrottle()

	start := time.Now()
	require.NoError(t, throttle.Wait(context.Background()))

	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestThrottle_ContextCancelled(t *testing.T) {
	throttle := NewThrottle()
	require.NoError(t, throttle.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := throttle.Wait(ctx)
	assert.Error(t, err)
}
