package capabilities

import (
	"fmt"
	"sort"
	"sync"
)

// Builder collects capabilities before the table is sealed.
// It is safe for concurrent use during the construction phase.
type Builder struct {
	mu         sync.Mutex
	caps       map[string]*Capability
	middleware []Middleware
	sealed     *Table
}

// NewBuilder creates an empty table builder.
func NewBuilder() *Builder {
	return &Builder{
		caps: make(map[string]*Capability),
	}
}

// Use adds middleware that wraps every processor when the table is sealed.
// Middleware executes in registration order (first registered is outermost).
func (b *Builder) Use(mw ...Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middleware = append(b.middleware, mw...)
}

// Register adds a capability. It fails if the name is already present or
// the table has been sealed.
func (b *Builder) Register(c *Capability) error {
	if err := validateName(c.name); err != nil {
		return err
	}
	if !c.mode.Valid() {
		return fmt.Errorf("register %s: invalid permission mode %d", c.name, int(c.mode))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sealed != nil {
		return NewError(KindSealed, "register", c.name, nil)
	}
	if _, exists := b.caps[c.name]; exists {
		return NewError(KindDuplicateName, "register", c.name, nil)
	}
	b.caps[c.name] = c
	return nil
}

// Seal freezes the builder and returns the immutable table.
// Sealing twice returns the same table.
func (b *Builder) Seal() *Table {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sealed != nil {
		return b.sealed
	}

	caps := make(map[string]*Capability, len(b.caps))
	names := make([]string, 0, len(b.caps))
	for name, c := range b.caps {
		for i := len(b.middleware) - 1; i >= 0; i-- {
			c.process = b.middleware[i](name, c.process)
		}
		caps[name] = c
		names = append(names, name)
	}
	sort.Strings(names)

	b.sealed = &Table{caps: caps, names: names}
	return b.sealed
}

// Table is the sealed, immutable name to capability mapping.
// Lookups take no locks and are safe for unlimited concurrent callers.
type Table struct {
	caps  map[string]*Capability
	names []string
}

// Lookup resolves a name. Comparison is exact and case-sensitive.
func (t *Table) Lookup(name string) (*Capability, bool) {
	c, ok := t.caps[name]
	return c, ok
}

// Names returns the registered names in sorted order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of registered capabilities.
func (t *Table) Len() int {
	return len(t.caps)
}
