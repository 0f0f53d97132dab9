package capabilities

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "kind only",
			err:  &Error{Kind: KindUnsupported},
			want: "unsupported",
		},
		{
			name: "op without name",
			err:  NewError(KindUnsupported, "readdir", "", nil),
			want: "readdir: unsupported",
		},
		{
			name: "op and name",
			err:  NewError(KindNotFound, "open", "incr", nil),
			want: "open incr: not found",
		},
		{
			name: "cancelled",
			err:  NewError(KindCancelled, "process", "incr", context.Canceled),
			want: "process incr: cancelled: context canceled",
		},
		{
			name: "with cause",
			err:  NewError(KindProcessingFailure, "process", "incr", errors.New("bad integer")),
			want: "process incr: processing failure: bad integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", NewError(KindPermissionDenied, "open", "reset", nil))

	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindPermissionDenied, KindOf(err))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewError(KindInternal, "process", "incr", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestError_CancelledKeepsContextError(t *testing.T) {
	t.Parallel()

	err := NewError(KindCancelled, "process", "incr", context.DeadlineExceeded)

	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrInternal)
}
