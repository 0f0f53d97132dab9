package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := NewValidationError("namespaces", "invalid")
	assert.Equal(t, "validation failed: namespaces: invalid", err.Error())

	err = NewValidationError("namespaces", "invalid", "/0/plugin: missing", "/1/mount: bad")
	assert.Equal(t, "validation failed: namespaces: invalid:\n  - /0/plugin: missing\n  - /1/mount: bad", err.Error())
}

func TestNamespaceError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewNamespaceError("counter", "/counter", "register failed", cause)
	assert.Equal(t, "namespace /counter (counter): register failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	err = NewNamespaceError("nope", "/nope", "unknown plugin", nil)
	assert.Equal(t, "namespace /nope (nope): unknown plugin", err.Error())
}

func TestGrantError(t *testing.T) {
	t.Parallel()

	err := NewGrantError("denied by user", "/kv", "/counter")
	assert.Equal(t, "grant error: denied by user (/kv, /counter)", err.Error())
}

func TestConfigurationError(t *testing.T) {
	t.Parallel()

	cause := errors.New("no such file")
	err := NewConfigurationError("bridge", "failed to load", cause)
	assert.Equal(t, "configuration error (bridge): failed to load: no such file", err.Error())
	assert.ErrorIs(t, err, cause)

	var target *ConfigurationError
	assert.ErrorAs(t, err, &target)
	assert.Equal(t, "bridge", target.Aspect)
}
