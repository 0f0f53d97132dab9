package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPayload(t *testing.T) {
	t.Parallel()

	t.Run("argument", func(t *testing.T) {
		t.Parallel()
		got, err := readPayload([]string{"counter/incr", "5"}, false, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte("5"), got)
	})

	t.Run("stdin", func(t *testing.T) {
		t.Parallel()
		got, err := readPayload([]string{"kv/set"}, true, strings.NewReader(`{"key":"a"}`))
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"key":"a"}`), got)
	})

	t.Run("empty stdin is an empty write", func(t *testing.T) {
		t.Parallel()
		got, err := readPayload([]string{"counter/reset"}, true, strings.NewReader(""))
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("no payload queries", func(t *testing.T) {
		t.Parallel()
		got, err := readPayload([]string{"ident/uuid"}, false, nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestWriteResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "adds newline", in: "10", want: "10\n"},
		{name: "keeps newline", in: "a=1\n", want: "a=1\n"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, writeResponse(&buf, []byte(tt.in)))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
