package repool

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Defaults applied by New when the corresponding option is not given.
const (
	DefaultMax                 = 1024
	DefaultIdleCheckInterval   = time.Second
	DefaultExpireCheckInterval = time.Second
	DefaultMaintenanceLatency  = 50 * time.Millisecond
)

type options[T any] struct {
	min         int
	max         int
	maxCreating int
	maxRequests int

	acquireTimeout time.Duration

	idleTimeout       time.Duration
	idleCheckInterval time.Duration

	expireTimeout       time.Duration
	expireCheckInterval time.Duration

	maintenanceInterval time.Duration
	maintenanceLatency  time.Duration

	backoff     func() time.Duration
	createLimit *rate.Limiter

	logger  *Logger
	metrics MetricsCollector
	hooks   Hooks[T]
}

// Option configures a Pool at construction time. Configuration is
// immutable afterwards, with the single exception of
// SetMaintenanceInterval.
type Option[T any] func(*options[T])

// WithMin sets the population floor. While the pool is not draining,
// the maintainer keeps at least min resources alive (free, lent, or
// being created), pre-warming the pool when idle. Default 0.
func WithMin[T any](min int) Option[T] {
	return func(o *options[T]) {
		o.min = min
	}
}

// WithMax sets the hard population cap across all states, including
// resources still being created or destroyed. Default 1024.
func WithMax[T any](max int) Option[T] {
	return func(o *options[T]) {
		o.max = max
	}
}

// WithMaxCreating caps the number of concurrent creations (the burst
// cap). A creation that fails with a backoff configured holds its slot
// for the cool-down, so this also bounds the retry rate. Default
// unlimited.
func WithMaxCreating[T any](n int) Option[T] {
	return func(o *options[T]) {
		o.maxCreating = n
	}
}

// WithMaxRequests caps the number of queued acquires. Further acquires
// fail immediately with ErrMaxRequests. Default unlimited.
func WithMaxRequests[T any](n int) Option[T] {
	return func(o *options[T]) {
		o.maxRequests = n
	}
}

// WithAcquireTimeout sets the default timeout for Acquire calls that
// do not override it. Zero (the default) means acquires wait forever
// (ageless requests).
func WithAcquireTimeout[T any](d time.Duration) Option[T] {
	return func(o *options[T]) {
		o.acquireTimeout = d
	}
}

// WithIdleTimeout enables idle reaping: a free resource untouched for
// longer than d is destroyed. Zero disables idle reaping.
func WithIdleTimeout[T any](d time.Duration) Option[T] {
	return func(o *options[T]) {
		o.idleTimeout = d
	}
}

// WithIdleCheckInterval sets the cadence of the idle sweep.
// Default 1s.
func WithIdleCheckInterval[T any](d time.Duration) Option[T] {
	return func(o *options[T]) {
		o.idleCheckInterval = d
	}
}

// WithExpireTimeout enables absolute-lifetime reaping: a free resource
// older than d since its creation is destroyed. The lifetime is fixed
// at creation and is not refreshed by reuse. Zero disables expiry.
func WithExpireTimeout[T any](d time.Duration) Option[T] {
	return func(o *options[T]) {
		o.expireTimeout = d
	}
}

// WithExpireCheckInterval sets the cadence of the expiry sweep.
// Default 1s.
func WithExpireCheckInterval[T any](d time.Duration) Option[T] {
	return func(o *options[T]) {
		o.expireCheckInterval = d
	}
}

// WithMaintenanceInterval sets the periodic maintenance cadence.
// Default: the smaller of the idle and expiry check intervals.
func WithMaintenanceInterval[T any](d time.Duration) Option[T] {
	return func(o *options[T]) {
		o.maintenanceInterval = d
	}
}

// WithMaintenanceLatency bounds how long an on-demand maintenance
// request (enqueue, release) may be deferred for debouncing.
// Default 50ms.
func WithMaintenanceLatency[T any](d time.Duration) Option[T] {
	return func(o *options[T]) {
		o.maintenanceLatency = d
	}
}

// WithBackoff supplies the cool-down after a failed creation. The
// creation slot stays occupied for the returned duration, so under
// WithMaxCreating the backoff bounds the retry rate. Without a
// backoff, failed creations release their slot immediately.
func WithBackoff[T any](fn func() time.Duration) Option[T] {
	return func(o *options[T]) {
		o.backoff = fn
	}
}

// WithCreateRateLimit throttles how fast the maintainer commissions
// new resources, using a token bucket. Commissions denied by the
// limiter are retried on the next maintenance pass. Default unlimited.
func WithCreateRateLimit[T any](r rate.Limit, burst int) Option[T] {
	return func(o *options[T]) {
		o.createLimit = rate.NewLimiter(r, burst)
	}
}

// WithLogger configures structured logging for pool operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := repool.NewJSONLogger(slog.LevelInfo)
//	pool, _ := repool.New[*Conn](factory, repool.WithLogger[*Conn](logger))
func WithLogger[T any](logger *Logger) Option[T] {
	return func(o *options[T]) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel[T any](level slog.Level) Option[T] {
	return func(o *options[T]) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// pool operations. Pass nil to disable metrics collection.
func WithMetricsCollector[T any](mc MetricsCollector) Option[T] {
	return func(o *options[T]) {
		o.metrics = mc
	}
}

// WithHooks configures lifecycle event hooks.
func WithHooks[T any](h Hooks[T]) Option[T] {
	return func(o *options[T]) {
		o.hooks = h
	}
}

func applyOptions[T any](optFns []Option[T]) (options[T], error) {
	o := options[T]{
		max:                 DefaultMax,
		idleCheckInterval:   DefaultIdleCheckInterval,
		expireCheckInterval: DefaultExpireCheckInterval,
		maintenanceLatency:  DefaultMaintenanceLatency,
		logger:              NoopLogger(),
		metrics:             NoopMetricsCollector{},
		hooks:               NoopHooks[T]{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	if o.maintenanceInterval <= 0 {
		o.maintenanceInterval = min(o.idleCheckInterval, o.expireCheckInterval)
	}
	if o.metrics == nil {
		o.metrics = NoopMetricsCollector{}
	}
	if o.hooks == nil {
		o.hooks = NoopHooks[T]{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}

	switch {
	case o.min < 0:
		return o, fmt.Errorf("min must not be negative: %d", o.min)
	case o.max <= 0:
		return o, fmt.Errorf("max must be positive: %d", o.max)
	case o.min > o.max:
		return o, fmt.Errorf("min %d exceeds max %d", o.min, o.max)
	case o.maintenanceLatency <= 0:
		return o, fmt.Errorf("maintenance latency must be positive: %v", o.maintenanceLatency)
	}
	return o, nil
}
