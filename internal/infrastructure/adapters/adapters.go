// Package adapters provides infrastructure adapters that implement application ports.
// These adapters wrap existing infrastructure components to satisfy port interfaces.
package adapters

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/reglet-dev/capbridge/internal/application/ports"
	"github.com/reglet-dev/capbridge/internal/domain/vfs"
	"github.com/reglet-dev/capbridge/internal/infrastructure/redaction"
	"github.com/reglet-dev/capbridge/internal/infrastructure/system"
	"github.com/reglet-dev/capbridge/internal/infrastructure/wasm"
)

// Ensure adapters implement ports at compile time
var (
	_ ports.SystemConfigProvider = (*SystemConfigAdapter)(nil)
	_ ports.GuestRuntimeFactory  = (*GuestRuntimeFactoryAdapter)(nil)
	_ ports.GuestRuntime         = (*GuestRuntimeAdapter)(nil)
)

// DefaultConfigDir returns ~/.capbridge.
func DefaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".capbridge"), nil
}

// SystemConfigAdapter adapts system config loader to port interface.
type SystemConfigAdapter struct {
	loader *system.ConfigLoader
}

// NewSystemConfigAdapter creates a new system config adapter.
func NewSystemConfigAdapter() *SystemConfigAdapter {
	return &SystemConfigAdapter{
		loader: system.NewConfigLoader(),
	}
}

// LoadConfig loads system configuration from path, or from
// ~/.capbridge/config.yaml when path is empty.
func (a *SystemConfigAdapter) LoadConfig(_ context.Context, path string) (*system.Config, error) {
	if path == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	return a.loader.Load(path)
}

// GuestRuntimeFactoryAdapter creates wasm runtimes.
// This adapter decouples the application layer from the concrete wasm.Runtime.
type GuestRuntimeFactoryAdapter struct {
	redactor      *redaction.Redactor
	stdin         io.Reader
	stdout        io.Writer
	stderr        io.Writer
	memoryLimitMB int
	parallelism   int
}

// RuntimeOptions configure runtimes created by the factory.
type RuntimeOptions struct {
	Redactor      *redaction.Redactor
	Stdin         io.Reader
	Stdout        io.Writer
	Stderr        io.Writer
	MemoryLimitMB int
	Parallelism   int
}

// NewGuestRuntimeFactoryAdapter creates a new runtime factory adapter.
func NewGuestRuntimeFactoryAdapter(opts RuntimeOptions) *GuestRuntimeFactoryAdapter {
	return &GuestRuntimeFactoryAdapter{
		redactor:      opts.Redactor,
		stdin:         opts.Stdin,
		stdout:        opts.Stdout,
		stderr:        opts.Stderr,
		memoryLimitMB: opts.MemoryLimitMB,
		parallelism:   opts.Parallelism,
	}
}

// NewRuntime creates a runtime with the namespaces mounted into every guest.
func (f *GuestRuntimeFactoryAdapter) NewRuntime(ctx context.Context, namespaces []vfs.Namespace) (ports.GuestRuntime, error) {
	runtime, err := wasm.NewRuntime(ctx, wasm.Config{
		Stdin:         f.stdin,
		Stdout:        f.stdout,
		Stderr:        f.stderr,
		Redactor:      f.redactor,
		Namespaces:    namespaces,
		MemoryLimitMB: f.memoryLimitMB,
		Parallelism:   f.parallelism,
	})
	if err != nil {
		return nil, err
	}
	return &GuestRuntimeAdapter{runtime: runtime}, nil
}

// GuestRuntimeAdapter wraps wasm.Runtime to implement ports.GuestRuntime.
type GuestRuntimeAdapter struct {
	runtime *wasm.Runtime
}

// RunGuests compiles every guest before running any of them.
func (r *GuestRuntimeAdapter) RunGuests(ctx context.Context, sources []ports.GuestSource, args []string) error {
	guests := make([]*wasm.Guest, 0, len(sources))
	for _, src := range sources {
		g, err := r.runtime.Load(ctx, src.Name, src.Bytes)
		if err != nil {
			return err
		}
		guests = append(guests, g)
	}
	if len(guests) == 1 {
		return r.runtime.Run(ctx, guests[0], args...)
	}
	return r.runtime.RunAll(ctx, guests, args...)
}

// Close releases runtime resources.
func (r *GuestRuntimeAdapter) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// UnwrapRuntime returns the underlying wasm.Runtime for infrastructure-layer use.
func (r *GuestRuntimeAdapter) UnwrapRuntime() *wasm.Runtime {
	return r.runtime
}
