package main

import (
	"path/filepath"
	"testing"

	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins"
	"github.com/reglet-dev/capbridge/internal/infrastructure/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultInitConfig(t *testing.T) {
	t.Parallel()

	catalog := plugins.Builtin()
	cfg := defaultInitConfig(catalog)

	require.Len(t, cfg.Namespaces, len(catalog.List()))
	for i, p := range catalog.List() {
		assert.Equal(t, p.Name(), cfg.Namespaces[i].Plugin)
		assert.Equal(t, "/"+p.Name(), cfg.Namespaces[i].MountPath())
	}
	assert.Equal(t, system.SecurityLevelStandard, cfg.Security.GetSecurityLevel())
}

func TestBuildInitConfig(t *testing.T) {
	t.Parallel()

	cfg := buildInitConfig([]string{"counter", "kv"}, "strict", true)

	require.Len(t, cfg.Namespaces, 2)
	assert.Equal(t, "kv", cfg.Namespaces[1].Plugin)
	assert.Equal(t, system.SecurityLevelStrict, cfg.Security.GetSecurityLevel())
	assert.True(t, cfg.Redaction.HashMode.Enabled)
	assert.NotEmpty(t, cfg.Redaction.HashMode.Salt)

	plain := buildInitConfig(nil, "standard", false)
	assert.False(t, plain.Redaction.HashMode.Enabled)
	assert.Empty(t, plain.Redaction.HashMode.Salt)
}

func TestDefaultInitConfig_SavesValidConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := system.NewConfigLoader()
	require.NoError(t, loader.Save(path, defaultInitConfig(plugins.Builtin())))

	loaded, err := loader.Load(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Namespaces, len(plugins.Builtin().List()))
}

func TestResolveInitPath(t *testing.T) {
	t.Parallel()

	got, err := resolveInitPath("custom.yaml")
	require.NoError(t, err)
	assert.Equal(t, "custom.yaml", got)
}
