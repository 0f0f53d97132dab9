// Package capabilities persists namespace grants and prompts for new ones.
package capabilities

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
)

// FileStore provides file-based persistence for namespace grants.
type FileStore struct {
	path string
}

// NewFileStore creates a new FileStore.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
	}
}

// ConfigPath returns the path to the grants file.
func (s *FileStore) ConfigPath() string {
	return s.path
}

// grantsFile represents the YAML structure of ~/.capbridge/grants.yaml
type grantsFile struct {
	Grants []string `yaml:"grants"`
}

// Load loads namespace grants.
// If the file does not exist, it returns an empty Grant without error.
func (s *FileStore) Load() (capabilities.Grant, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return capabilities.NewGrant(), nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grants file: %w", err)
	}

	var f grantsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse grants file: %w", err)
	}

	grants := capabilities.NewGrant()
	for _, mount := range f.Grants {
		grants.Add(mount)
	}
	return grants, nil
}

// Save writes namespace grants in sorted order.
func (s *FileStore) Save(grants capabilities.Grant) error {
	//nolint:gosec // G301: 0o755 is standard for user config directories (~/.capbridge)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	mounts := append([]string{}, grants...)
	sort.Strings(mounts)

	data, err := yaml.MarshalWithOptions(grantsFile{Grants: mounts}, yaml.IndentSequence(true))
	if err != nil {
		return fmt.Errorf("failed to marshal grants to YAML: %w", err)
	}

	return os.WriteFile(s.path, data, 0o600)
}
