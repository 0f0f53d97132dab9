// Package system provides infrastructure for system-level configuration.
// This includes loading the bridge config file (~/.capbridge/config.yaml),
// which declares the mounted namespaces and the redaction and security
// policies.
package system

import (
	_ "embed"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/capbridge/internal/infrastructure/redaction"
	"github.com/reglet-dev/capbridge/internal/infrastructure/validation"
)

//go:embed schema.json
var schemaDocument []byte

var configSchema = validation.MustCompile("capbridge-config.json", schemaDocument)

// Config represents the bridge configuration file (~/.capbridge/config.yaml).
type Config struct {
	Namespaces        []NamespaceConfig `yaml:"namespaces"`
	Redaction         RedactionConfig   `yaml:"redaction"`
	Security          SecurityConfig    `yaml:"security"`
	WasmMemoryLimitMB int               `yaml:"wasm_memory_limit_mb"`
	Parallelism       int               `yaml:"parallelism"`
}

// NamespaceConfig mounts one plugin into every guest.
type NamespaceConfig struct {
	// Settings are passed to the plugin when its table is built.
	Settings map[string]any `yaml:"settings,omitempty"`
	Plugin   string         `yaml:"plugin"`
	// Mount is the guest path. Defaults to /<plugin>.
	Mount string `yaml:"mount,omitempty"`
	// Version is a semver constraint the plugin must satisfy.
	Version string `yaml:"version,omitempty"`
}

// MountPath returns the cleaned guest path of the namespace.
func (n NamespaceConfig) MountPath() string {
	if n.Mount == "" {
		return "/" + n.Plugin
	}
	return path.Clean("/" + n.Mount)
}

// RedactionConfig configures how sensitive data is sanitized.
type RedactionConfig struct {
	HashMode        HashModeConfig `yaml:"hash_mode"`
	Patterns        []string       `yaml:"patterns"`
	Keys            []string       `yaml:"keys"`
	DisableGitleaks bool           `yaml:"disable_gitleaks"`
}

// HashModeConfig controls hash-based redaction.
type HashModeConfig struct {
	Salt    string `yaml:"salt"`
	Enabled bool   `yaml:"enabled"`
}

// ToRedaction converts the file format to the redactor configuration.
func (r RedactionConfig) ToRedaction() redaction.Config {
	return redaction.Config{
		Patterns:        r.Patterns,
		Keys:            r.Keys,
		HashMode:        r.HashMode.Enabled,
		Salt:            r.HashMode.Salt,
		DisableGitleaks: r.DisableGitleaks,
	}
}

// SecurityConfig configures namespace grant policies.
type SecurityConfig struct {
	// Level defines the security policy: "strict", "standard", or "permissive"
	// - strict: writable namespaces need an explicit grant
	// - standard: writable namespaces are mounted with a warning (default)
	// - permissive: every namespace is mounted silently
	Level string `yaml:"level"`
}

// SecurityLevel represents the security enforcement level.
type SecurityLevel string

const (
	// SecurityLevelStrict requires grants for writable namespaces
	SecurityLevelStrict SecurityLevel = "strict"

	// SecurityLevelStandard warns about writable namespaces (default)
	SecurityLevelStandard SecurityLevel = "standard"

	// SecurityLevelPermissive mounts everything without warnings
	SecurityLevelPermissive SecurityLevel = "permissive"
)

// GetSecurityLevel returns the configured security level, defaulting to Standard.
func (c *SecurityConfig) GetSecurityLevel() SecurityLevel {
	switch c.Level {
	case "strict":
		return SecurityLevelStrict
	case "standard":
		return SecurityLevelStandard
	case "permissive":
		return SecurityLevelPermissive
	default:
		return SecurityLevelStandard
	}
}

// ConfigLoader loads system configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new system config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// DefaultConfig returns a Config with safe defaults for all fields.
// No namespaces are declared, which mounts every built-in plugin.
func DefaultConfig() *Config {
	return &Config{
		Namespaces: []NamespaceConfig{},
		Redaction: RedactionConfig{
			Patterns: []string{},
			Keys:     []string{},
		},
		Security: SecurityConfig{
			Level: string(SecurityLevelStandard),
		},
		WasmMemoryLimitMB: 0, // 0 means use runtime default
		Parallelism:       0, // 0 means unbounded
	}
}

// Load loads the configuration from the specified path.
// If the file does not exist, returns DefaultConfig().
func (l *ConfigLoader) Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	//nolint:gosec // G304: path is the user-provided config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes a configuration document.
func Parse(data []byte) (*Config, error) {
	if err := configSchema.ValidateYAML(data); err != nil {
		return nil, fmt.Errorf("invalid system config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}
	return config, nil
}

// Save writes the configuration to path, creating the directory if needed.
func (l *ConfigLoader) Save(path string, config *Config) error {
	//nolint:gosec // G301: 0o755 is standard for user config directories
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.MarshalWithOptions(config, yaml.IndentSequence(true))
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
