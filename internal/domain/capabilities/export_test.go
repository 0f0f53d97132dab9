package capabilities

import "context"

// snapshot returns the current state of c once the guard is free.
func (c *Capability) snapshot() any {
	_ = c.guard.sem.Acquire(context.Background(), 1)
	defer c.guard.sem.Release(1)
	return c.guard.state
}
