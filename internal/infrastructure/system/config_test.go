package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoader_Load_FileNotExists(t *testing.T) {
	loader := NewConfigLoader()
	cfg, err := loader.Load("/nonexistent/config.yaml")

	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Empty(t, cfg.Namespaces)
	assert.Equal(t, SecurityLevelStandard, cfg.Security.GetSecurityLevel())
}

func TestConfigLoader_Load_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yaml := `
namespaces:
  - plugin: counter
    settings:
      start: 5
  - plugin: kv
    mount: /store
    version: ">= 1.0.0"

redaction:
  patterns:
    - "password\\s*=\\s*\\S+"
  keys:
    - api_key
  hash_mode:
    enabled: true
    salt: "test-salt"

security:
  level: strict

wasm_memory_limit_mb: 128
parallelism: 4
`
	err := os.WriteFile(configPath, []byte(yaml), 0o600)
	require.NoError(t, err)

	cfg, err := NewConfigLoader().Load(configPath)
	require.NoError(t, err)

	require.Len(t, cfg.Namespaces, 2)
	assert.Equal(t, "counter", cfg.Namespaces[0].Plugin)
	assert.Equal(t, "/counter", cfg.Namespaces[0].MountPath())
	assert.EqualValues(t, 5, cfg.Namespaces[0].Settings["start"])
	assert.Equal(t, "/store", cfg.Namespaces[1].MountPath())
	assert.Equal(t, ">= 1.0.0", cfg.Namespaces[1].Version)

	assert.Len(t, cfg.Redaction.Patterns, 1)
	assert.Equal(t, []string{"api_key"}, cfg.Redaction.Keys)
	assert.True(t, cfg.Redaction.HashMode.Enabled)
	assert.Equal(t, "test-salt", cfg.Redaction.HashMode.Salt)

	assert.Equal(t, SecurityLevelStrict, cfg.Security.GetSecurityLevel())
	assert.Equal(t, 128, cfg.WasmMemoryLimitMB)
	assert.Equal(t, 4, cfg.Parallelism)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError string
	}{
		{name: "unknown field", input: "bogus: 1\n", wantError: "bogus"},
		{name: "missing plugin", input: "namespaces:\n  - mount: /x\n", wantError: "plugin"},
		{name: "bad level", input: "security:\n  level: lax\n", wantError: "/security/level"},
		{name: "bad memory limit", input: "wasm_memory_limit_mb: -2\n", wantError: "/wasm_memory_limit_mb"},
		{name: "plugin name", input: "namespaces:\n  - plugin: Bad/Name\n", wantError: "/namespaces/0/plugin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid system config")
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigLoader_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	loader := NewConfigLoader()

	cfg := DefaultConfig()
	cfg.Namespaces = []NamespaceConfig{{Plugin: "echo"}, {Plugin: "calc", Mount: "/math"}}
	cfg.Security.Level = "permissive"
	require.NoError(t, loader.Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Namespaces, loaded.Namespaces)
	assert.Equal(t, SecurityLevelPermissive, loaded.Security.GetSecurityLevel())
}

func TestRedactionConfig_ToRedaction(t *testing.T) {
	rc := RedactionConfig{
		HashMode:        HashModeConfig{Enabled: true, Salt: "s"},
		Patterns:        []string{"p"},
		Keys:            []string{"k"},
		DisableGitleaks: true,
	}
	out := rc.ToRedaction()
	assert.True(t, out.HashMode)
	assert.Equal(t, "s", out.Salt)
	assert.Equal(t, []string{"p"}, out.Patterns)
	assert.Equal(t, []string{"k"}, out.Keys)
	assert.True(t, out.DisableGitleaks)
}

func TestSecurityConfig_GetSecurityLevel(t *testing.T) {
	tests := []struct {
		level string
		want  SecurityLevel
	}{
		{"strict", SecurityLevelStrict},
		{"standard", SecurityLevelStandard},
		{"permissive", SecurityLevelPermissive},
		{"", SecurityLevelStandard},
		{"other", SecurityLevelStandard},
	}
	for _, tt := range tests {
		c := SecurityConfig{Level: tt.level}
		assert.Equal(t, tt.want, c.GetSecurityLevel(), tt.level)
	}
}
