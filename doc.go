// Package repool provides a general-purpose resource pool for Go.
//
// Repool amortizes the cost of creating expensive, reusable resources
// (database connections, file handles, sockets, workers) by maintaining
// a bounded population of them, matching client requests to free
// instances, and governing their creation, reuse, expiry, and
// destruction. Features include:
//
//   - Type-safe generic API: Pool[T] over any resource value type
//   - Deadline-aware request queueing: finite-timeout requests are
//     served in deadline order ahead of untimed bulk requests
//   - Bounded population with a warm floor (Min) and a hard cap (Max)
//   - Bounded-concurrency creation with failure backoff that holds the
//     creation slot during cool-down, rate-limiting retries
//   - Optional creation rate limiting (token bucket)
//   - Idle and absolute-lifetime reaping on independent cadences
//   - Two-phase drain: reject, cancel, destroy, then await stragglers
//   - Structured logging (log/slog), pluggable metrics and event hooks
//
// # Quick Start
//
// Create a pool with a factory and acquire resources:
//
//	pool, err := repool.New[*sql.Conn](repool.FactoryFuncs[*sql.Conn]{
//	    New: func(ctx context.Context) (*sql.Conn, error) {
//	        return db.Conn(ctx)
//	    },
//	    Close: func(ctx context.Context, c *sql.Conn) error {
//	        return c.Close()
//	    },
//	}, repool.WithMin[*sql.Conn](4), repool.WithMax[*sql.Conn](64), repool.WithIdleTimeout[*sql.Conn](time.Minute))
//	if err != nil {
//	    panic(err)
//	}
//	defer pool.Drain(context.Background())
//
//	conn, err := pool.Acquire(ctx, repool.WithTimeout(2*time.Second))
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conn)
//
// Non-blocking fast path:
//
//	if conn, ok := pool.TryAcquire(); ok {
//	    defer pool.Release(conn)
//	    // ...
//	}
//
// # Request Classes
//
// An acquire with a timeout (per-call or the pool default) is an aging
// request: it fails with ErrAcquireTimeout once its deadline passes,
// and aging requests are served in deadline order. An acquire without
// any timeout is ageless: it waits until a resource is available or
// the pool drains, and ageless requests are served FIFO, strictly
// after aging ones.
//
// # Lifecycle
//
// Resources move creating → free → lent → free ... → destroying. A
// resource that fails validation on serve or on release is destroyed
// instead of being reused. Free resources idle longer than IdleTimeout,
// or older than ExpireTimeout since creation, are reaped in the
// background. Expiry is measured from creation and is never refreshed
// by reuse.
//
// Drain rejects new acquires, cancels every queued request with
// ErrDrainAborted, destroys all free resources, and then waits for
// lent and in-flight resources to come home. Drain is idempotent and
// every concurrent caller's wait completes.
package repool
