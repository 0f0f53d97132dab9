package capabilities

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

var (
	errPoisoned  = errors.New("capability state poisoned")
	errNotIssued = errors.New("request not issued")
)

// panicError records a processor panic.
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("processor panicked: %v", e.value)
}

// guard owns a capability's state. The weighted semaphore admits one holder
// at a time and queues waiters in FIFO order, so state transitions follow
// acquisition order. The poison flag may be shared with sibling guards.
type guard struct {
	sem      *semaphore.Weighted
	state    any
	poisoned *atomic.Bool
}

func newGuard(initial any) *guard {
	return &guard{
		sem:      semaphore.NewWeighted(1),
		state:    initial,
		poisoned: new(atomic.Bool),
	}
}

// apply runs fn against the guarded state and commits the new state on success.
func (g *guard) apply(ctx context.Context, fn ProcessFunc, input []byte) ([]byte, error) {
	if g.poisoned.Load() {
		return nil, errPoisoned
	}
	// Acquire may succeed on an already-cancelled context.
	if ctx.Err() != nil {
		return nil, errNotIssued
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, errNotIssued
	}
	defer g.sem.Release(1)

	// A previous holder may have panicked while we were queued.
	if g.poisoned.Load() {
		return nil, errPoisoned
	}

	next, out, err := g.invoke(ctx, fn, input)
	if err != nil {
		return nil, err
	}
	g.state = next
	return out, nil
}

func (g *guard) invoke(ctx context.Context, fn ProcessFunc, input []byte) (next any, out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			g.poisoned.Store(true)
			next, out, err = nil, nil, &panicError{value: r}
		}
	}()
	return fn(ctx, g.state, input)
}
