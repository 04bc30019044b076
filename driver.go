package repool

import (
	"context"
	"time"
)

// runCreate executes one commissioned creation on its own goroutine.
// The creation slot acquired during top-up stays occupied until the
// outcome is fully applied; a failure with a backoff configured holds
// the slot for the cool-down, which is what rate-limits retries.
func (p *Pool[T]) runCreate() {
	ctx := context.Background()

	start := time.Now()
	value, err := p.factory.Create(ctx)
	d := time.Since(start)

	p.opts.metrics.RecordCreate(d, err)
	p.opts.logger.LogCreate(ctx, d, err)

	if err != nil {
		p.opts.hooks.OnCreateError(err)

		var delay time.Duration
		if p.opts.backoff != nil {
			delay = p.opts.backoff()
		}
		if delay > 0 {
			time.AfterFunc(delay, p.finishFailedCreate)
		} else {
			p.finishFailedCreate()
		}
		return
	}

	p.storeCreated(value)
}

// finishFailedCreate releases the creation slot after a failure (and
// after any backoff cool-down) and nudges the maintainer to retry.
func (p *Pool[T]) finishFailedCreate() {
	var acts actions[T]

	p.mu.Lock()
	p.gov.ReleaseSlot()
	if p.draining {
		acts.drained = p.checkDrainedLocked()
	} else {
		p.scheduleMaintenanceLocked()
	}
	p.mu.Unlock()

	p.fire(&acts)
}

// storeCreated records a successful creation and admits the resource
// through the storage check; a pool that started draining meanwhile
// sends it straight to destruction.
func (p *Pool[T]) storeCreated(value T) {
	var acts actions[T]

	now := time.Now()
	rec := &record[T]{
		value:     value,
		createdAt: now,
		state:     stateFree,
	}
	if p.opts.expireTimeout > 0 {
		rec.expiresAt = now.Add(p.opts.expireTimeout)
	}

	p.mu.Lock()
	p.gov.ReleaseSlot()
	p.storeLocked(rec, now, &acts)
	p.mu.Unlock()

	p.opts.hooks.OnCreateSuccess(value)
	p.fire(&acts)
}

// runDestroy executes one destruction on its own goroutine. Factory
// destroy errors are logged and swallowed; the resource is already
// gone from the pool's accounting perspective once the callback
// returns.
func (p *Pool[T]) runDestroy(value T) {
	ctx := context.Background()

	start := time.Now()
	err := p.factory.Destroy(ctx, value)
	d := time.Since(start)

	p.opts.metrics.RecordDestroy(d)
	p.opts.logger.LogDestroy(ctx, d, err)

	var acts actions[T]

	p.mu.Lock()
	p.destroying--
	if p.draining {
		acts.drained = p.checkDrainedLocked()
	} else {
		p.scheduleMaintenanceLocked()
	}
	p.mu.Unlock()

	p.fire(&acts)
}
