package repool_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/repool"
)

type session struct {
	id int
}

func Example() {
	ctx := context.Background()

	var nextID int
	factory := repool.FactoryFuncs[*session]{
		New: func(ctx context.Context) (*session, error) {
			nextID++
			return &session{id: nextID}, nil
		},
		Close: func(ctx context.Context, s *session) error {
			fmt.Printf("closed session %d\n", s.id)
			return nil
		},
	}

	pool, err := repool.New[*session](factory,
		repool.WithMax[*session](8),
		repool.WithMaintenanceLatency[*session](5*time.Millisecond),
	)
	if err != nil {
		panic(err)
	}

	// First acquire commissions a new session.
	s, err := pool.Acquire(ctx, repool.WithTimeout(time.Second))
	if err != nil {
		panic(err)
	}
	fmt.Printf("got session %d\n", s.id)
	pool.Release(s)

	// The released session is reused.
	again, err := pool.Acquire(ctx, repool.WithTimeout(time.Second))
	if err != nil {
		panic(err)
	}
	fmt.Printf("reused: %v\n", s == again)
	pool.Release(again)

	// Drain destroys everything and rejects further acquires.
	if err := pool.Drain(ctx); err != nil {
		panic(err)
	}
	_, err = pool.Acquire(ctx, repool.WithTimeout(time.Second))
	fmt.Println(errors.Is(err, repool.ErrDraining))

	// Output:
	// got session 1
	// reused: true
	// closed session 1
	// true
}
