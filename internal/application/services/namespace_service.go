// Package services contains the application services that assemble
// capability namespaces, decide which of them guests may see, and serve
// host-side calls.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/semver/v3"
	apperrors "github.com/reglet-dev/capbridge/internal/application/errors"
	"github.com/reglet-dev/capbridge/internal/application/ports"
	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	"github.com/reglet-dev/capbridge/internal/domain/vfs"
	"github.com/reglet-dev/capbridge/internal/infrastructure/system"
)

// NamespaceService builds sealed capability namespaces from configuration.
type NamespaceService struct {
	catalog ports.PluginCatalog
	logger  *slog.Logger
	preview func([]byte) string
}

// NewNamespaceService creates a namespace service. preview renders request
// and response payloads in debug logs and should scrub secrets; nil logs
// payloads verbatim.
func NewNamespaceService(catalog ports.PluginCatalog, logger *slog.Logger, preview func([]byte) string) *NamespaceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NamespaceService{
		catalog: catalog,
		logger:  logger,
		preview: preview,
	}
}

// Build registers and seals one table per namespace config. With no
// configs, every catalog plugin is mounted at /<name> with default settings.
func (s *NamespaceService) Build(ctx context.Context, configs []system.NamespaceConfig) ([]vfs.Namespace, error) {
	if len(configs) == 0 {
		for _, p := range s.catalog.List() {
			configs = append(configs, system.NamespaceConfig{Plugin: p.Name()})
		}
	}

	namespaces := make([]vfs.Namespace, 0, len(configs))
	mounts := make(map[string]string, len(configs))
	for _, cfg := range configs {
		mount := cfg.MountPath()
		if mount == "/" {
			return nil, apperrors.NewNamespaceError(cfg.Plugin, mount, "cannot mount at the guest root", nil)
		}
		if other, exists := mounts[mount]; exists {
			return nil, apperrors.NewNamespaceError(cfg.Plugin, mount,
				fmt.Sprintf("mount already used by %s", other), nil)
		}
		mounts[mount] = cfg.Plugin

		ns, err := s.build(ctx, cfg, mount)
		if err != nil {
			return nil, err
		}
		namespaces = append(namespaces, ns)
	}
	return namespaces, nil
}

func (s *NamespaceService) build(ctx context.Context, cfg system.NamespaceConfig, mount string) (vfs.Namespace, error) {
	plugin, ok := s.catalog.Lookup(cfg.Plugin)
	if !ok {
		return vfs.Namespace{}, apperrors.NewNamespaceError(cfg.Plugin, mount, "unknown plugin", nil)
	}

	if err := checkVersion(plugin.Version(), cfg.Version); err != nil {
		return vfs.Namespace{}, apperrors.NewNamespaceError(cfg.Plugin, mount, "version mismatch", err)
	}

	b := capabilities.NewBuilder()
	b.Use(capabilities.Logging(s.logger.With("namespace", mount), s.preview))
	if err := plugin.Register(b, cfg.Settings); err != nil {
		return vfs.Namespace{}, apperrors.NewNamespaceError(cfg.Plugin, mount, "failed to register capabilities", err)
	}
	table := b.Seal()

	s.logger.DebugContext(ctx, "namespace built",
		"plugin", plugin.Name(),
		"version", plugin.Version(),
		"mount", mount,
		"capabilities", table.Names())

	return vfs.Namespace{
		Directory: vfs.NewDirectory(mount, table),
		Mount:     mount,
		Plugin:    plugin.Name(),
		Version:   plugin.Version(),
	}, nil
}

// checkVersion reports whether version satisfies constraint. An empty
// constraint accepts every version.
func checkVersion(version, constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid plugin version %q: %w", version, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("version %s does not satisfy %s", v, constraint)
	}
	return nil
}

// Describe returns the grant-facing view of each namespace.
func (s *NamespaceService) Describe(namespaces []vfs.Namespace) []ports.NamespaceInfo {
	infos := make([]ports.NamespaceInfo, 0, len(namespaces))
	for _, ns := range namespaces {
		table := ns.Directory.Table()
		info := ports.NamespaceInfo{
			Mount:   ns.MountPath(),
			Plugin:  ns.Plugin,
			Version: ns.Version,
		}
		for _, name := range table.Names() {
			c, _ := table.Lookup(name)
			info.Capabilities = append(info.Capabilities, ports.CapabilityInfo{Name: name, Mode: c.Mode()})
		}
		infos = append(infos, info)
	}
	return infos
}
