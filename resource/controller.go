// Package resource implements the creation governor: the limits that
// bound how many resources a pool may be constructing at once and how
// fast it may commission new ones.
package resource

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds creation limits.
type Config struct {
	// MaxCreating is the maximum number of concurrent creations.
	// If 0, no hard limit is enforced (only tracking).
	MaxCreating int64

	// CreateLimiter throttles how fast new creations may start.
	// If nil, unlimited.
	CreateLimiter *rate.Limiter
}

// Controller governs creation slots and creation rate.
//
// A slot is acquired before the factory's create call starts and held
// until its outcome is fully applied. A failed creation with a backoff
// keeps its slot for the cool-down, which is what bounds the retry
// rate under MaxCreating.
type Controller struct {
	cfg Config

	createSem *semaphore.Weighted // nil if unlimited
	creating  atomic.Int64
}

// NewController creates a new creation governor.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxCreating > 0 {
		c.createSem = semaphore.NewWeighted(cfg.MaxCreating)
	}

	return c
}

// TryAcquireSlot attempts to reserve one creation slot without
// blocking. Returns true if acquired, false if the burst cap is
// reached.
func (c *Controller) TryAcquireSlot() bool {
	if c == nil {
		return true
	}

	if c.createSem != nil {
		if !c.createSem.TryAcquire(1) {
			return false
		}
	}

	c.creating.Add(1)
	return true
}

// ReleaseSlot releases a creation slot.
func (c *Controller) ReleaseSlot() {
	if c == nil {
		return
	}

	if c.createSem != nil {
		c.createSem.Release(1)
	}
	c.creating.Add(-1)
}

// Creating returns the number of occupied creation slots, including
// slots held by backoff cool-downs.
func (c *Controller) Creating() int64 {
	if c == nil {
		return 0
	}
	return c.creating.Load()
}

// AllowCreate reports whether the rate limiter permits starting one
// creation now. Denied creations are simply retried later; no token is
// consumed on denial.
func (c *Controller) AllowCreate() bool {
	if c == nil || c.cfg.CreateLimiter == nil {
		return true
	}
	return c.cfg.CreateLimiter.Allow()
}
