// Package capabilities defines the host capabilities exposed to sandboxed
// guests: permission modes, the state-threading processor bound to each
// capability, and the sealed table guests resolve names against.
package capabilities

import (
	"context"
	"errors"
	"strings"
)

// Processor is the state-transition function bound to a capability.
// It receives the current state and the request payload and returns the
// next state and the response payload. A non-nil error rejects the request
// and leaves the state unchanged.
type Processor[S any] func(state S, input []byte) (S, []byte, error)

// ProcessFunc is the type-erased form of a Processor that middleware wraps.
type ProcessFunc func(ctx context.Context, state any, input []byte) (any, []byte, error)

// Capability is a named unit of host functionality.
// Name and mode are immutable; state is only reachable through the guard.
type Capability struct {
	name    string
	mode    Mode
	process ProcessFunc
	guard   *guard
}

// New creates a capability with the given initial state and processor.
func New[S any](name string, mode Mode, initial S, proc Processor[S]) *Capability {
	return &Capability{
		name:  name,
		mode:  mode,
		guard: newGuard(initial),
		process: func(_ context.Context, state any, input []byte) (any, []byte, error) {
			s, _ := state.(S)
			return proc(s, input)
		},
	}
}

// Name returns the capability name.
func (c *Capability) Name() string {
	return c.name
}

// Mode returns the permission mode the capability was registered with.
func (c *Capability) Mode() Mode {
	return c.mode
}

// Poisoned reports whether a processor panic left the state untrustworthy.
func (c *Capability) Poisoned() bool {
	return c.guard.poisoned.Load()
}

// Group makes caps share one poison flag, so a panic in any of them
// disables all of them. Capabilities whose processors reach the same
// underlying value belong in one group. Group must be called before the
// capabilities serve requests.
func Group(caps ...*Capability) {
	if len(caps) == 0 {
		return
	}
	shared := caps[0].guard.poisoned
	for _, c := range caps[1:] {
		if c.guard.poisoned.Load() {
			shared.Store(true)
		}
		c.guard.poisoned = shared
	}
}

// Process runs one request through the processor under the state guard.
// The call is not issued if ctx is done before the guard is acquired; once
// the guard is held the outcome is committed regardless of ctx.
func (c *Capability) Process(ctx context.Context, input []byte) ([]byte, error) {
	out, err := c.guard.apply(ctx, c.process, input)
	if err == nil {
		return out, nil
	}

	var panicErr *panicError
	switch {
	case errors.Is(err, errPoisoned):
		return nil, NewError(KindInternal, "process", c.name, nil)
	case errors.As(err, &panicErr):
		return nil, NewError(KindInternal, "process", c.name, panicErr)
	case errors.Is(err, errNotIssued):
		return nil, NewError(KindCancelled, "process", c.name, ctx.Err())
	default:
		return nil, NewError(KindProcessingFailure, "process", c.name, err)
	}
}

// validateName rejects names that cannot be addressed as a single path element.
func validateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return NewError(KindInvalidName, "register", name, nil)
	case strings.ContainsAny(name, "/\x00"):
		return NewError(KindInvalidName, "register", name, nil)
	}
	return nil
}
