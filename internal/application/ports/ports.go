// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"

	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	"github.com/reglet-dev/capbridge/internal/domain/vfs"
	"github.com/reglet-dev/capbridge/internal/infrastructure/system"
)

// Plugin contributes one namespace of capabilities.
// Register is called once per mounted namespace with the namespace's
// settings from the bridge configuration.
type Plugin interface {
	Name() string
	Version() string
	Description() string
	Register(b *capabilities.Builder, settings map[string]any) error
}

// PluginCatalog resolves plugins by name.
type PluginCatalog interface {
	Lookup(name string) (Plugin, bool)
	List() []Plugin
}

// SystemConfigProvider loads the bridge configuration.
type SystemConfigProvider interface {
	LoadConfig(ctx context.Context, path string) (*system.Config, error)
}

// GrantStore persists namespace grants.
type GrantStore interface {
	Load() (capabilities.Grant, error)
	Save(grants capabilities.Grant) error
	ConfigPath() string
}

// GrantPrompter asks the user whether a namespace may be mounted.
type GrantPrompter interface {
	IsInteractive() bool
	PromptForNamespace(info NamespaceInfo) (granted bool, always bool, err error)
	FormatNonInteractiveError(missing []NamespaceInfo) error
}

// GuestSource is a compiled-to-be guest module.
type GuestSource struct {
	Name  string
	Bytes []byte
}

// GuestRuntime runs guests against the namespaces it was created with.
type GuestRuntime interface {
	// RunGuests runs every guest concurrently and returns the first failure.
	RunGuests(ctx context.Context, guests []GuestSource, args []string) error
	Close(ctx context.Context) error
}

// GuestRuntimeFactory creates guest runtimes.
type GuestRuntimeFactory interface {
	NewRuntime(ctx context.Context, namespaces []vfs.Namespace) (GuestRuntime, error)
}
