package kv

import (
	"context"
	"testing"

	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	"github.com/reglet-dev/capbridge/internal/domain/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectory(t *testing.T, settings map[string]any) *vfs.Directory {
	t.Helper()
	b := capabilities.NewBuilder()
	require.NoError(t, New().Register(b, settings))
	return vfs.NewDirectory(Name, b.Seal())
}

func TestKV_SetGetKeys(t *testing.T) {
	t.Parallel()
	d := newDirectory(t, nil)
	ctx := context.Background()

	out, err := d.Call(ctx, "keys", nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))

	_, err = d.Call(ctx, "set", []byte(`{"key": "b", "value": {"n": 1,  "tags": ["x"]}}`))
	require.NoError(t, err)
	_, err = d.Call(ctx, "set", []byte(`{"key": "a", "value": "hello"}`))
	require.NoError(t, err)

	out, err = d.Call(ctx, "get", []byte(`{"key": "b"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"n": 1, "tags": ["x"]}`, string(out))
	assert.Equal(t, `{"n":1,"tags":["x"]}`, string(out))

	out, err = d.Call(ctx, "get", []byte(`{"key": "a"}`))
	require.NoError(t, err)
	assert.Equal(t, `"hello"`, string(out))

	out, err = d.Call(ctx, "keys", nil)
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, string(out))

	// Overwrite
	_, err = d.Call(ctx, "set", []byte(`{"key": "a", "value": null}`))
	require.NoError(t, err)
	out, err = d.Call(ctx, "get", []byte(`{"key": "a"}`))
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestKV_InvalidRequests(t *testing.T) {
	t.Parallel()
	d := newDirectory(t, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		capab string
		input string
	}{
		{"set not json", "set", `key=a`},
		{"set missing value", "set", `{"key": "a"}`},
		{"set empty key", "set", `{"key": "", "value": 1}`},
		{"set extra field", "set", `{"key": "a", "value": 1, "ttl": 5}`},
		{"get wrong type", "get", `{"key": 5}`},
		{"get missing key", "get", `{"key": "nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Call(ctx, tt.capab, []byte(tt.input))
			assert.ErrorIs(t, err, capabilities.ErrProcessingFailure)
		})
	}
}

func TestKV_Settings(t *testing.T) {
	t.Parallel()
	d := newDirectory(t, map[string]any{
		"initial":     map[string]any{"region": "eu-west-1"},
		"max_entries": 2,
	})
	ctx := context.Background()

	out, err := d.Call(ctx, "get", []byte(`{"key": "region"}`))
	require.NoError(t, err)
	assert.Equal(t, `"eu-west-1"`, string(out))

	_, err = d.Call(ctx, "set", []byte(`{"key": "zone", "value": "b"}`))
	require.NoError(t, err)

	_, err = d.Call(ctx, "set", []byte(`{"key": "third", "value": 3}`))
	assert.ErrorIs(t, err, capabilities.ErrProcessingFailure)

	// Replacing an existing key is allowed when full.
	_, err = d.Call(ctx, "set", []byte(`{"key": "zone", "value": "c"}`))
	assert.NoError(t, err)
}

func TestKV_Modes(t *testing.T) {
	t.Parallel()
	d := newDirectory(t, nil)

	_, err := d.Open(context.Background(), "set", true, true)
	assert.ErrorIs(t, err, capabilities.ErrPermissionDenied)
	_, err = d.Open(context.Background(), "keys", false, true)
	assert.ErrorIs(t, err, capabilities.ErrPermissionDenied)
}
