package digest

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	"github.com/reglet-dev/capbridge/internal/domain/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

func newDirectory(t *testing.T, settings map[string]any) *vfs.Directory {
	t.Helper()
	b := capabilities.NewBuilder()
	require.NoError(t, New().Register(b, settings))
	return vfs.NewDirectory(Name, b.Seal())
}

func blake3Hex(data string) string {
	sum := blake3.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func TestDigest_Sum(t *testing.T) {
	t.Parallel()
	d := newDirectory(t, nil)

	out, err := d.Call(context.Background(), "sum", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, blake3Hex("hello"), string(out))

	// sum keeps no state between requests.
	out, err = d.Call(context.Background(), "sum", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, blake3Hex("hello"), string(out))
}

func TestDigest_Stream(t *testing.T) {
	t.Parallel()
	d := newDirectory(t, nil)
	ctx := context.Background()

	out, err := d.Call(ctx, "stream", []byte("hello "))
	require.NoError(t, err)
	assert.Equal(t, blake3Hex("hello "), string(out))

	out, err = d.Call(ctx, "stream", []byte("world"))
	require.NoError(t, err)
	assert.Equal(t, blake3Hex("hello world"), string(out))

	_, err = d.Call(ctx, "reset", []byte{})
	require.NoError(t, err)

	out, err = d.Call(ctx, "stream", []byte("again"))
	require.NoError(t, err)
	assert.Equal(t, blake3Hex("again"), string(out))
}

func TestDigest_Keyed(t *testing.T) {
	t.Parallel()
	plain := newDirectory(t, nil)
	keyed := newDirectory(t, map[string]any{"key": "secret"})
	other := newDirectory(t, map[string]any{"key": "other"})
	ctx := context.Background()

	a, err := keyed.Call(ctx, "sum", []byte("payload"))
	require.NoError(t, err)
	b, err := plain.Call(ctx, "sum", []byte("payload"))
	require.NoError(t, err)
	c, err := other.Call(ctx, "sum", []byte("payload"))
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)

	again, err := keyed.Call(ctx, "sum", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, a, again)
}
