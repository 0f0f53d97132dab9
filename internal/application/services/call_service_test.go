package services

import (
	"context"
	"testing"

	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins"
	"github.com/reglet-dev/capbridge/internal/infrastructure/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target    string
		wantMount string
		wantName  string
	}{
		{"counter/incr", "/counter", "incr"},
		{"/counter/incr", "/counter", "incr"},
		{"tools/count/incr", "/tools/count", "incr"},
		{"incr", "/", "incr"},
		{"counter/", "/", "counter"},
		{"", "/", ""},
	}
	for _, tt := range tests {
		mount, name := splitTarget(tt.target)
		assert.Equal(t, tt.wantMount, mount, tt.target)
		assert.Equal(t, tt.wantName, name, tt.target)
	}
}

func TestCallService_Call(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	namespaces, err := NewNamespaceService(plugins.Builtin(), nil, nil).Build(ctx, []system.NamespaceConfig{
		{Plugin: "counter"},
		{Plugin: "echo", Mount: "/tools/echo"},
	})
	require.NoError(t, err)
	svc := NewCallService(namespaces)

	out, err := svc.Call(ctx, "counter/incr", []byte("2"))
	require.NoError(t, err)
	assert.Equal(t, "2", string(out))

	out, err = svc.Call(ctx, "/counter/value", nil)
	require.NoError(t, err)
	assert.Equal(t, "2", string(out))

	out, err = svc.Call(ctx, "tools/echo/echo", []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(out))

	_, err = svc.Call(ctx, "counter/missing", nil)
	assert.ErrorIs(t, err, capabilities.ErrNotFound)
	_, err = svc.Call(ctx, "nowhere/incr", nil)
	assert.ErrorIs(t, err, capabilities.ErrNotFound)
	_, err = svc.Call(ctx, "counter/value", []byte("1"))
	assert.ErrorIs(t, err, capabilities.ErrPermissionDenied)
}
