package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagus-watch/ratelimit"
)

func TestWaitAdmitsUnderTheLimit(t *testing.T) {
	l := ratelimit.New(5, nil, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Wait(ctx, ratelimit.ClassFetch))
	}
}

func TestWaitBlocksWhenSaturated(t *testing.T) {
	l := ratelimit.New(1, nil, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, l.Wait(ctx, ratelimit.ClassFetch))

	// the second call sits in cooldown until the context expires
	err := l.Wait(ctx, ratelimit.ClassFetch)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSmoothingDelaysSecondCall(t *testing.T) {
	delay := 30 * time.Millisecond
	l := ratelimit.New(100, map[ratelimit.Class]time.Duration{
		ratelimit.ClassAI: delay,
	}, time.Hour)

	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, ratelimit.ClassAI))

	start := time.Now()
	require.NoError(t, l.Wait(ctx, ratelimit.ClassAI))
	assert.GreaterOrEqual(t, time.Since(start), delay/2)
}

func TestClassesShareTheHourlyWindow(t *testing.T) {
	l := ratelimit.New(2, nil, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, l.Wait(ctx, ratelimit.ClassFetch))
	require.NoError(t, l.Wait(ctx, ratelimit.ClassAI))

	// both classes drew from the same budget
	err := l.Wait(ctx, ratelimit.ClassFetch)
	assert.Error(t, err)
}
