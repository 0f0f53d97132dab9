package capabilities

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo(state struct{}, input []byte) (struct{}, []byte, error) {
	return state, input, nil
}

func TestBuilder_Register(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	require.NoError(t, b.Register(New("echo", ReadWrite, struct{}{}, echo)))
	require.NoError(t, b.Register(New("Echo", ReadOnly, struct{}{}, echo)))

	err := b.Register(New("echo", WriteOnly, struct{}{}, echo))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateName)

	table := b.Seal()
	assert.Equal(t, 2, table.Len())

	c, ok := table.Lookup("echo")
	require.True(t, ok)
	assert.Equal(t, ReadWrite, c.Mode(), "duplicate registration must not replace the original")
}

func TestBuilder_RegisterInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cap  *Capability
	}{
		{"empty name", New("", ReadWrite, struct{}{}, echo)},
		{"dot", New(".", ReadWrite, struct{}{}, echo)},
		{"dot dot", New("..", ReadWrite, struct{}{}, echo)},
		{"slash", New("a/b", ReadWrite, struct{}{}, echo)},
		{"nul", New("a\x00b", ReadWrite, struct{}{}, echo)},
		{"zero mode", New("zero", Mode(0), struct{}{}, echo)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			assert.Error(t, b.Register(tt.cap))
			assert.Equal(t, 0, b.Seal().Len())
		})
	}
}

func TestBuilder_SealFreezes(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	require.NoError(t, b.Register(New("echo", ReadWrite, struct{}{}, echo)))
	table := b.Seal()

	err := b.Register(New("late", ReadWrite, struct{}{}, echo))
	assert.ErrorIs(t, err, ErrSealed)

	_, ok := table.Lookup("late")
	assert.False(t, ok)
	assert.Same(t, table, b.Seal(), "sealing twice returns the same table")
}

func TestTable_LookupIsExact(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	require.NoError(t, b.Register(New("incr", ReadWrite, 0, accumulate)))
	table := b.Seal()

	_, ok := table.Lookup("incr")
	assert.True(t, ok)

	for _, name := range []string{"INCR", "Incr", "incr ", " incr", "inc", ""} {
		_, ok := table.Lookup(name)
		assert.False(t, ok, "lookup %q", name)
	}
}

func TestTable_Names(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	for _, name := range []string{"reset", "incr", "value"} {
		require.NoError(t, b.Register(New(name, ReadWrite, 0, accumulate)))
	}
	table := b.Seal()

	names := table.Names()
	assert.Equal(t, []string{"incr", "reset", "value"}, names)

	// The returned slice is a copy
	names[0] = "mutated"
	assert.Equal(t, []string{"incr", "reset", "value"}, table.Names())
}

func TestTable_ConcurrentLookup(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	require.NoError(t, b.Register(New("incr", ReadWrite, 0, accumulate)))
	table := b.Seal()
	want, _ := table.Lookup("incr")

	const numGoroutines = 64
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			got, ok := table.Lookup("incr")
			assert.True(t, ok)
			assert.Same(t, want, got)
		}()
	}
	wg.Wait()
}

func TestBuilder_Middleware(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(tag string) Middleware {
		return func(name string, next ProcessFunc) ProcessFunc {
			return func(ctx context.Context, state any, input []byte) (any, []byte, error) {
				order = append(order, tag+":"+name)
				return next(ctx, state, input)
			}
		}
	}

	b := NewBuilder()
	b.Use(mw("outer"), mw("inner"))
	require.NoError(t, b.Register(New("echo", ReadWrite, struct{}{}, echo)))
	table := b.Seal()

	c, _ := table.Lookup("echo")
	out, err := c.Process(context.Background(), []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(out))
	assert.Equal(t, []string{"outer:echo", "inner:echo"}, order)
}
