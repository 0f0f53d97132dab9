package capabilities

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleIDContext(t *testing.T) {
	t.Parallel()

	_, ok := HandleIDFromContext(context.Background())
	assert.False(t, ok)

	id, ok := HandleIDFromContext(WithHandleID(context.Background(), "h-1"))
	require.True(t, ok)
	assert.Equal(t, "h-1", id)
}

func TestLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	upper := func(b []byte) string { return strings.ToUpper(string(b)) }

	b := NewBuilder()
	b.Use(Logging(logger, upper))
	require.NoError(t, b.Register(New("echo", ReadWrite, struct{}{}, echo)))
	require.NoError(t, b.Register(New("fail", ReadWrite, struct{}{},
		func(s struct{}, _ []byte) (struct{}, []byte, error) {
			return s, nil, errors.New("bad input")
		})))
	table := b.Seal()

	c, _ := table.Lookup("echo")
	out, err := c.Process(WithHandleID(context.Background(), "h-7"), []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), out)

	logged := buf.String()
	assert.Contains(t, logged, "capability processed request")
	assert.Contains(t, logged, "capability=echo")
	assert.Contains(t, logged, "handle=h-7")
	assert.Contains(t, logged, "input=HI")

	buf.Reset()
	c, _ = table.Lookup("fail")
	_, err = c.Process(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProcessingFailure)
	assert.Contains(t, buf.String(), "capability rejected request")
	assert.Contains(t, buf.String(), "bad input")
}

func TestUse_Order(t *testing.T) {
	t.Parallel()

	var calls []string
	trace := func(tag string) Middleware {
		return func(_ string, next ProcessFunc) ProcessFunc {
			return func(ctx context.Context, state any, input []byte) (any, []byte, error) {
				calls = append(calls, tag)
				return next(ctx, state, input)
			}
		}
	}

	b := NewBuilder()
	b.Use(trace("outer"), trace("inner"))
	require.NoError(t, b.Register(New("echo", ReadWrite, struct{}{}, echo)))
	c, _ := b.Seal().Lookup("echo")

	_, err := c.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, calls)
}
