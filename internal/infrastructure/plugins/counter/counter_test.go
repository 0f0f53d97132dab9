package counter

import (
	"context"
	"strconv"
	"testing"

	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	"github.com/reglet-dev/capbridge/internal/domain/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newDirectory(t *testing.T, settings map[string]any) *vfs.Directory {
	t.Helper()
	b := capabilities.NewBuilder()
	require.NoError(t, New().Register(b, settings))
	return vfs.NewDirectory(Name, b.Seal())
}

func call(t *testing.T, d *vfs.Directory, name string, input []byte) string {
	t.Helper()
	out, err := d.Call(context.Background(), name, input)
	require.NoError(t, err)
	return string(out)
}

func TestPlugin_Metadata(t *testing.T) {
	t.Parallel()
	p := New()
	assert.Equal(t, "counter", p.Name())
	assert.Equal(t, "1.0.0", p.Version())
	assert.NotEmpty(t, p.Description())
}

func TestCounter_Modes(t *testing.T) {
	t.Parallel()
	table := newDirectory(t, nil).Table()

	want := map[string]capabilities.Mode{
		"incr":  capabilities.ReadWrite,
		"reset": capabilities.WriteOnly,
		"value": capabilities.ReadOnly,
	}
	assert.Equal(t, []string{"incr", "reset", "value"}, table.Names())
	for name, mode := range want {
		c, ok := table.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, mode, c.Mode(), name)
	}
}

func TestCounter_Accumulates(t *testing.T) {
	t.Parallel()
	d := newDirectory(t, nil)

	assert.Equal(t, "1", call(t, d, "incr", []byte("1")))
	assert.Equal(t, "3", call(t, d, "incr", []byte("2")))
	assert.Equal(t, "3", call(t, d, "incr", []byte("")))
	assert.Equal(t, "-2", call(t, d, "incr", []byte(" -5\n")))
	assert.Equal(t, "-2", call(t, d, "value", nil))
}

func TestCounter_ResetAndStart(t *testing.T) {
	t.Parallel()
	d := newDirectory(t, map[string]any{"start": 40})

	assert.Equal(t, "40", call(t, d, "value", nil))
	assert.Equal(t, "42", call(t, d, "incr", []byte("2")))

	assert.Empty(t, call(t, d, "reset", []byte("7")))
	assert.Equal(t, "7", call(t, d, "value", nil))

	assert.Empty(t, call(t, d, "reset", []byte{}))
	assert.Equal(t, "0", call(t, d, "value", nil))
}

func TestCounter_InvalidInput(t *testing.T) {
	t.Parallel()
	d := newDirectory(t, nil)
	ctx := context.Background()

	call(t, d, "incr", []byte("5"))

	_, err := d.Call(ctx, "incr", []byte("five"))
	assert.ErrorIs(t, err, capabilities.ErrProcessingFailure)
	_, err = d.Call(ctx, "reset", []byte("0x10"))
	assert.ErrorIs(t, err, capabilities.ErrProcessingFailure)

	assert.Equal(t, "5", call(t, d, "value", nil))
}

func TestCounter_InvalidSettings(t *testing.T) {
	t.Parallel()
	err := New().Register(capabilities.NewBuilder(), map[string]any{"begin": 1})
	assert.Error(t, err)
}

func TestCounter_ConcurrentIncrements(t *testing.T) {
	t.Parallel()
	d := newDirectory(t, nil)

	const callers = 100
	var g errgroup.Group
	for i := 1; i <= callers; i++ {
		g.Go(func() error {
			_, err := d.Call(context.Background(), "incr", []byte(strconv.Itoa(i)))
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, strconv.Itoa(callers*(callers+1)/2), call(t, d, "value", nil))
}

func TestCounter_PanicDisablesAllCapabilities(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := capabilities.NewBuilder()
	b.Use(func(name string, next capabilities.ProcessFunc) capabilities.ProcessFunc {
		return func(ctx context.Context, state any, input []byte) (any, []byte, error) {
			if name == "incr" && string(input) == "panic" {
				panic("processor bug")
			}
			return next(ctx, state, input)
		}
	})
	require.NoError(t, New().Register(b, map[string]any{"start": 5}))
	d := vfs.NewDirectory(Name, b.Seal())

	_, err := d.Call(ctx, "incr", []byte("panic"))
	require.ErrorIs(t, err, capabilities.ErrInternal)

	requests := map[string][]byte{"incr": []byte("1"), "reset": []byte("0"), "value": nil}
	for name, input := range requests {
		_, err := d.Call(ctx, name, input)
		assert.ErrorIs(t, err, capabilities.ErrInternal, name)
	}
}
