package repool

import (
	"context"
	"reflect"
)

// Factory supplies the pool with the lifecycle operations for a
// resource value type T. The pool owns when these are invoked; the
// factory owns how a resource comes into and goes out of existence.
//
// Create and Destroy are invoked on their own goroutines and may block.
// Validate and Compare are invoked inline by the pool's scheduler and
// must be fast and side-effect free.
type Factory[T any] interface {
	// Create produces a new resource. It is called at most once per
	// creation slot; its result is recorded exactly once.
	Create(ctx context.Context) (T, error)

	// Destroy disposes of a resource. Errors are logged by the pool
	// and otherwise swallowed. By the time Destroy is called the
	// resource can no longer be served; it still counts toward the
	// pool's population (and holds up Drain) until Destroy returns.
	Destroy(ctx context.Context, value T) error

	// Validate reports whether a resource is still usable. It is
	// called before a free resource is served and before a returning
	// resource is stored, never on resources lent out.
	Validate(value T) bool

	// Compare reports whether two resource values identify the same
	// resource. It must be an equivalence relation.
	Compare(a, b T) bool
}

// FactoryFuncs adapts plain functions to the Factory interface.
//
// New is required. Close is optional; when nil, destroyed resources are
// simply dropped. Check defaults to rejecting zero values. Equal
// defaults to identity equality, which requires T to be a comparable
// type (pointers, interfaces, and channels all are).
type FactoryFuncs[T any] struct {
	New   func(ctx context.Context) (T, error)
	Close func(ctx context.Context, value T) error
	Check func(value T) bool
	Equal func(a, b T) bool
}

// Create implements Factory.
func (f FactoryFuncs[T]) Create(ctx context.Context) (T, error) {
	return f.New(ctx)
}

// Destroy implements Factory.
func (f FactoryFuncs[T]) Destroy(ctx context.Context, value T) error {
	if f.Close == nil {
		return nil
	}
	return f.Close(ctx, value)
}

// Validate implements Factory.
func (f FactoryFuncs[T]) Validate(value T) bool {
	if f.Check == nil {
		return !reflect.ValueOf(&value).Elem().IsZero()
	}
	return f.Check(value)
}

// Compare implements Factory.
func (f FactoryFuncs[T]) Compare(a, b T) bool {
	if f.Equal == nil {
		return any(a) == any(b)
	}
	return f.Equal(a, b)
}
