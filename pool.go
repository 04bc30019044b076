package repool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hupe1980/repool/internal/queue"
	"github.com/hupe1980/repool/resource"
)

// Pool is a bounded population of reusable resources of type T.
//
// All state transitions run under a single lock; the factory's Create
// and Destroy calls run on their own goroutines and re-enter that lock
// through their completions. User-facing callbacks (hooks, completion
// deliveries) are never invoked with the lock held.
type Pool[T any] struct {
	opts    options[T]
	factory Factory[T]
	gov     *resource.Controller

	mu sync.Mutex

	aging   *queue.Deadline[*request[T]]
	ageless *queue.FIFO[*request[T]]

	// free is served head-first and appended tail-on-release, biasing
	// reuse toward the oldest release so idle candidates surface.
	free []*record[T]

	// lent is insertion ordered; lookups scan newest-first so the most
	// recently acquired match wins if a caller hands out duplicates.
	lent []*record[T]

	destroying int

	lastIdleCheck   time.Time
	lastExpireCheck time.Time

	draining             bool
	maintenanceScheduled bool

	maintenanceInterval time.Duration
	ticker              *time.Ticker
	stopTicker          chan struct{}

	drainStart     time.Time
	drainCancelled int
	drainFired     bool
	drainedCh      chan struct{}
}

// New creates a pool around the given factory.
//
// The pool starts its maintenance goroutine immediately; with a Min
// configured it begins pre-warming right away. Call Drain to shut the
// pool down and stop all background work.
func New[T any](factory Factory[T], optFns ...Option[T]) (*Pool[T], error) {
	if factory == nil {
		return nil, errors.New("repool: factory must not be nil")
	}
	o, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &Pool[T]{
		opts:    o,
		factory: factory,
		gov: resource.NewController(resource.Config{
			MaxCreating:   int64(o.maxCreating),
			CreateLimiter: o.createLimit,
		}),
		aging:               queue.NewDeadline[*request[T]](),
		ageless:             queue.NewFIFO[*request[T]](),
		lastIdleCheck:       now,
		lastExpireCheck:     now,
		maintenanceInterval: o.maintenanceInterval,
		stopTicker:          make(chan struct{}),
		drainedCh:           make(chan struct{}),
	}

	p.ticker = time.NewTicker(p.maintenanceInterval)
	go p.maintenanceLoop()

	p.mu.Lock()
	p.scheduleMaintenanceLocked()
	p.mu.Unlock()

	return p, nil
}

// AcquireOption overrides acquire behavior for a single call.
type AcquireOption func(*acquireOptions)

type acquireOptions struct {
	timeout    time.Duration
	timeoutSet bool
}

// WithTimeout overrides the pool's default acquire timeout for one
// call. Zero means wait forever (an ageless request). A negative
// timeout produces an already-elapsed deadline: the acquire fails with
// ErrAcquireTimeout on the next maintenance pass.
func WithTimeout(d time.Duration) AcquireOption {
	return func(o *acquireOptions) {
		o.timeout = d
		o.timeoutSet = true
	}
}

// Acquire obtains a resource, waiting until one is served, the
// request's deadline passes, or the pool drains.
//
// Cancelling ctx abandons the wait but does not remove the queued
// request: if it is later served, the resource is automatically
// released back to the pool. Drain is the collective cancel for
// everything still queued.
func (p *Pool[T]) Acquire(ctx context.Context, optFns ...AcquireOption) (T, error) {
	var zero T

	var ao acquireOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&ao)
		}
	}
	timeout := p.opts.acquireTimeout
	if ao.timeoutSet {
		timeout = ao.timeout
	}

	now := time.Now()
	var deadline time.Time
	if timeout != 0 {
		deadline = now.Add(timeout)
	}
	req := newRequest[T](callerOrigin(1), now, deadline)

	p.mu.Lock()
	if p.draining {
		p.mu.Unlock()
		return zero, p.rejectNow(req, ErrDraining)
	}
	if p.opts.maxRequests > 0 && p.aging.Len()+p.ageless.Len() >= p.opts.maxRequests {
		p.mu.Unlock()
		return zero, p.rejectNow(req, ErrMaxRequests)
	}
	if deadline.IsZero() {
		p.ageless.Push(req)
	} else {
		p.aging.Push(req, deadline)
	}
	p.scheduleMaintenanceLocked()
	p.mu.Unlock()

	p.opts.hooks.OnEnqueue(req.info)

	select {
	case res := <-req.ch:
		return res.value, res.err
	case <-ctx.Done():
		go func() {
			// The request stays queued; hand back whatever it is
			// eventually served.
			if res := <-req.ch; res.err == nil {
				p.Release(res.value)
			}
		}()
		return zero, ctx.Err()
	}
}

// rejectNow fails an acquire before it ever enters the queue.
func (p *Pool[T]) rejectNow(req *request[T], sentinel error) error {
	err := newAcquireError(sentinel, req.info.Origin)
	p.opts.hooks.OnServeError(req.info, err)
	p.opts.metrics.RecordAcquire(0, err)
	p.opts.logger.LogServe(context.Background(), req.info, 0, err)
	return err
}

// TryAcquire is the non-blocking fast path: it pops one immediately
// usable free resource, or reports false without waiting.
//
// The attempt runs through the same serve path as queued acquires, so
// hooks and metrics observe it identically. During drain TryAcquire
// always reports false.
func (p *Pool[T]) TryAcquire() (T, bool) {
	var zero T

	now := time.Now()
	req := newRequest[T](callerOrigin(1), now, time.Time{})
	req.info.Synthetic = true

	var acts actions[T]

	p.mu.Lock()
	if p.draining {
		p.completeFailLocked(req, ErrDraining, &acts)
		p.mu.Unlock()
		p.fire(&acts)
		return zero, false
	}
	rec, ok := p.popFreeLocked(&acts)
	if !ok {
		p.mu.Unlock()
		p.fire(&acts)
		return zero, false
	}
	p.serveLocked(req, rec, &acts)
	p.mu.Unlock()
	p.fire(&acts)

	return rec.value, true
}

// Release returns a lent resource to the pool. The resource is
// validated and re-freed, or destroyed if it fails validation or the
// pool is draining. Releasing a value the pool does not recognize is a
// no-op.
//
// The caller must not use the value after Release.
func (p *Pool[T]) Release(value T) {
	var acts actions[T]

	p.mu.Lock()
	rec := p.removeLentLocked(value)
	if rec == nil {
		p.mu.Unlock()
		return
	}
	acts.releases = append(acts.releases, value)
	p.storeLocked(rec, time.Now(), &acts)
	p.mu.Unlock()

	p.fire(&acts)
}

// Discard removes a resource from the pool and destroys it, whether it
// is currently lent or free. Discarding an unknown value is a no-op,
// so Discard is idempotent.
//
// The caller must not use the value after Discard.
func (p *Pool[T]) Discard(value T) {
	var acts actions[T]

	p.mu.Lock()
	rec := p.removeLentLocked(value)
	if rec == nil {
		rec = p.removeFreeLocked(value)
	}
	if rec == nil {
		p.mu.Unlock()
		return
	}
	rec.assignedTo = nil
	p.toDestroyingLocked(rec, &acts)
	p.mu.Unlock()

	p.fire(&acts)
}

// Drain shuts the pool down: new acquires are rejected, every queued
// request fails with ErrDrainAborted, all free resources are
// destroyed, and the call waits until lent and in-flight resources
// have come home and been destroyed.
//
// Drain is idempotent: every caller waits for the same completion.
// ctx bounds only this caller's wait, not the drain itself.
func (p *Pool[T]) Drain(ctx context.Context) error {
	var acts actions[T]

	p.mu.Lock()
	if !p.draining {
		p.draining = true
		p.drainStart = time.Now()
		close(p.stopTicker)

		for _, req := range p.aging.Drain() {
			p.completeFailLocked(req, ErrDrainAborted, &acts)
		}
		for _, req := range p.ageless.Drain() {
			p.completeFailLocked(req, ErrDrainAborted, &acts)
		}
		p.drainCancelled = len(acts.fails)
		for _, rec := range p.free {
			p.toDestroyingLocked(rec, &acts)
		}
		p.free = nil

		acts.drained = p.checkDrainedLocked()
	}
	p.mu.Unlock()

	p.fire(&acts)

	select {
	case <-p.drainedCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetMaintenanceInterval changes the periodic maintenance cadence.
// It has no effect once the pool is draining.
func (p *Pool[T]) SetMaintenanceInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.draining {
		return
	}
	p.maintenanceInterval = d
	p.ticker.Reset(d)
}

// Stats is a point-in-time snapshot of the pool population.
type Stats struct {
	Free           int
	Lent           int
	Creating       int
	Destroying     int
	WaitingAging   int
	WaitingAgeless int
	Draining       bool
}

// Total returns the live population across all states.
func (s Stats) Total() int {
	return s.Free + s.Lent + s.Creating + s.Destroying
}

// Stats returns a snapshot of the pool population and queue depths.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Free:           len(p.free),
		Lent:           len(p.lent),
		Creating:       int(p.gov.Creating()),
		Destroying:     p.destroying,
		WaitingAging:   p.aging.Len(),
		WaitingAgeless: p.ageless.Len(),
		Draining:       p.draining,
	}
}

func (p *Pool[T]) totalLocked() int {
	return len(p.free) + len(p.lent) + int(p.gov.Creating()) + p.destroying
}

// removeLentLocked finds and removes the lent record for value,
// scanning newest-first.
func (p *Pool[T]) removeLentLocked(value T) *record[T] {
	for i := len(p.lent) - 1; i >= 0; i-- {
		if p.factory.Compare(p.lent[i].value, value) {
			rec := p.lent[i]
			p.lent = append(p.lent[:i], p.lent[i+1:]...)
			return rec
		}
	}
	return nil
}

// removeFreeLocked finds and removes the free record for value,
// scanning newest-first.
func (p *Pool[T]) removeFreeLocked(value T) *record[T] {
	for i := len(p.free) - 1; i >= 0; i-- {
		if p.factory.Compare(p.free[i].value, value) {
			rec := p.free[i]
			p.free = append(p.free[:i], p.free[i+1:]...)
			return rec
		}
	}
	return nil
}

// storeLocked is the storage check: a resource heading back to the
// free list is admitted only if the pool is alive and the resource
// still validates; otherwise it is destroyed.
func (p *Pool[T]) storeLocked(rec *record[T], now time.Time, acts *actions[T]) {
	rec.assignedTo = nil
	if !p.draining && p.factory.Validate(rec.value) {
		rec.state = stateFree
		rec.idleAt = now
		p.free = append(p.free, rec)
		p.scheduleMaintenanceLocked()
		return
	}
	p.toDestroyingLocked(rec, acts)
}

func (p *Pool[T]) toDestroyingLocked(rec *record[T], acts *actions[T]) {
	rec.state = stateDestroying
	p.destroying++
	acts.destroys = append(acts.destroys, rec.value)
}

// checkDrainedLocked reports whether this call observed the pool reach
// zero population while draining. It fires at most once.
func (p *Pool[T]) checkDrainedLocked() bool {
	if !p.draining || p.drainFired || p.totalLocked() != 0 {
		return false
	}
	p.drainFired = true
	return true
}

// fireDrained emits the drain event and wakes every Drain waiter.
func (p *Pool[T]) fireDrained() {
	p.opts.hooks.OnDrain()
	d := time.Since(p.drainStart)
	p.opts.metrics.RecordDrain(d)
	p.opts.logger.LogDrain(context.Background(), p.drainCancelled, d)
	close(p.drainedCh)
}
