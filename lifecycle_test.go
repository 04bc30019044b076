package repool_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/repool"
)

// TestNoGoroutineLeaks verifies that all background workers (the
// maintenance ticker loop, create/destroy goroutines, debounce and
// backoff timers) are gone once Drain completes.
func TestNoGoroutineLeaks(t *testing.T) {
	tests := []struct {
		name     string
		exercise func(t *testing.T, f *testFactory, p *repool.Pool[*conn])
	}{
		{
			name:     "idle pool",
			exercise: func(*testing.T, *testFactory, *repool.Pool[*conn]) {},
		},
		{
			name: "acquire and release",
			exercise: func(t *testing.T, f *testFactory, p *repool.Pool[*conn]) {
				for i := 0; i < 5; i++ {
					c, err := p.Acquire(context.Background(), repool.WithTimeout(time.Second))
					require.NoError(t, err)
					p.Release(c)
				}
			},
		},
		{
			name: "failing factory with backoff",
			exercise: func(t *testing.T, f *testFactory, p *repool.Pool[*conn]) {
				f.fail.Store(true)
				_, err := p.Acquire(context.Background(), repool.WithTimeout(100*time.Millisecond))
				require.Error(t, err)
				f.fail.Store(false)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runtime.GC()
			before := runtime.NumGoroutine()

			f := newTestFactory()
			p, err := repool.New[*conn](f, fastOpts(
				repool.WithMin[*conn](2),
				repool.WithBackoff[*conn](func() time.Duration { return 20 * time.Millisecond }),
			)...)
			require.NoError(t, err)

			tt.exercise(t, f, p)
			drainPool(t, p)

			// Give pending one-shot timers a moment to fire into no-ops.
			time.Sleep(200 * time.Millisecond)
			runtime.GC()
			after := runtime.NumGoroutine()

			// Allow small variance for runtime background goroutines.
			assert.LessOrEqual(t, after, before+2,
				"goroutines leaked: before=%d after=%d", before, after)
		})
	}
}

// TestDrain_WaitsForLent verifies the two-phase shutdown: drain
// completes only after lent resources come home.
func TestDrain_WaitsForLent(t *testing.T) {
	f := newTestFactory()
	p, err := repool.New[*conn](f, fastOpts()...)
	require.NoError(t, err)

	c, err := p.Acquire(context.Background(), repool.WithTimeout(time.Second))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- p.Drain(ctx)
	}()

	// The drain must hold while the resource is still out.
	select {
	case <-done:
		t.Fatal("drain completed while a resource was still lent")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, 1, p.Stats().Lent)

	p.Release(c)
	require.NoError(t, <-done)

	stats := p.Stats()
	assert.Equal(t, 0, stats.Total())
	assert.Equal(t, f.created.Load(), f.destroyed.Load())
}

// TestDrain_CallerContext verifies that ctx bounds only the caller's
// wait: an expired wait does not stop the drain itself.
func TestDrain_CallerContext(t *testing.T) {
	f := newTestFactory()
	p, err := repool.New[*conn](f, fastOpts()...)
	require.NoError(t, err)

	c, err := p.Acquire(context.Background(), repool.WithTimeout(time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = p.Drain(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The pool is still draining; returning the resource finishes it.
	p.Release(c)
	require.NoError(t, p.Drain(context.Background()))
	assert.Equal(t, 0, p.Stats().Total())
}
