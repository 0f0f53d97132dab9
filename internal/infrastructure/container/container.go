// Package container provides dependency injection for the application.
package container

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	apperrors "github.com/reglet-dev/capbridge/internal/application/errors"
	"github.com/reglet-dev/capbridge/internal/application/ports"
	"github.com/reglet-dev/capbridge/internal/application/services"
	"github.com/reglet-dev/capbridge/internal/infrastructure/adapters"
	infraCapabilities "github.com/reglet-dev/capbridge/internal/infrastructure/capabilities"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins"
	"github.com/reglet-dev/capbridge/internal/infrastructure/redaction"
	"github.com/reglet-dev/capbridge/internal/infrastructure/system"
)

// Container holds all application dependencies.
type Container struct {
	systemCfg        *system.Config
	redactor         *redaction.Redactor
	catalog          ports.PluginCatalog
	namespaceService *services.NamespaceService
	runGuestsUseCase *services.RunGuestsUseCase
	logger           *slog.Logger
	configPath       string
	grantsPath       string
}

// Options configure the container.
type Options struct {
	Logger           *slog.Logger
	Stdin            io.Reader
	Stdout           io.Writer
	Stderr           io.Writer
	SecurityLevel    string
	SystemConfigPath string
	// Parallelism overrides the configured guest parallelism when positive.
	Parallelism int
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	// Resolve config paths; grants live next to the config file
	configPath := opts.SystemConfigPath
	if configPath == "" {
		dir, err := adapters.DefaultConfigDir()
		if err != nil {
			return nil, apperrors.NewConfigurationError("system", "cannot locate config directory", err)
		}
		configPath = filepath.Join(dir, "config.yaml")
	}
	grantsPath := filepath.Join(filepath.Dir(configPath), "grants.yaml")

	// Load system config
	systemCfg, err := adapters.NewSystemConfigAdapter().LoadConfig(context.TODO(), configPath)
	if err != nil {
		return nil, apperrors.NewConfigurationError("system", "failed to load "+configPath, err)
	}

	// Initialize redactor
	redactor, err := redaction.New(systemCfg.Redaction.ToRedaction())
	if err != nil {
		return nil, apperrors.NewConfigurationError("redaction", "invalid redaction settings", err)
	}

	// Determine security level (command-line flag takes precedence over config file)
	securityLevel := systemCfg.Security.GetSecurityLevel()
	if opts.SecurityLevel != "" {
		securityLevel = (&system.SecurityConfig{Level: opts.SecurityLevel}).GetSecurityLevel()
	}

	parallelism := systemCfg.Parallelism
	if opts.Parallelism > 0 {
		parallelism = opts.Parallelism
	}

	catalog := plugins.Builtin()
	namespaceService := services.NewNamespaceService(catalog, opts.Logger, redactor.Preview)

	gatekeeper := services.NewGrantGatekeeper(
		infraCapabilities.NewFileStore(grantsPath),
		infraCapabilities.NewTerminalPrompter(grantsPath),
		securityLevel,
	)

	runtimeFactory := adapters.NewGuestRuntimeFactoryAdapter(adapters.RuntimeOptions{
		Redactor:      redactor,
		Stdin:         opts.Stdin,
		Stdout:        opts.Stdout,
		Stderr:        opts.Stderr,
		MemoryLimitMB: systemCfg.WasmMemoryLimitMB,
		Parallelism:   parallelism,
	})

	// Wire up use case
	runGuestsUseCase := services.NewRunGuestsUseCase(
		systemCfg,
		namespaceService,
		gatekeeper,
		runtimeFactory,
		opts.Logger,
	)

	return &Container{
		systemCfg:        systemCfg,
		redactor:         redactor,
		catalog:          catalog,
		namespaceService: namespaceService,
		runGuestsUseCase: runGuestsUseCase,
		logger:           opts.Logger,
		configPath:       configPath,
		grantsPath:       grantsPath,
	}, nil
}

// RunGuestsUseCase returns the run guests use case.
func (c *Container) RunGuestsUseCase() *services.RunGuestsUseCase {
	return c.runGuestsUseCase
}

// NamespaceService returns the namespace service.
func (c *Container) NamespaceService() *services.NamespaceService {
	return c.namespaceService
}

// Catalog returns the plugin catalog.
func (c *Container) Catalog() ports.PluginCatalog {
	return c.catalog
}

// Redactor returns the configured redactor.
func (c *Container) Redactor() *redaction.Redactor {
	return c.redactor
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// ConfigPath returns the resolved config file path.
func (c *Container) ConfigPath() string {
	return c.configPath
}

// GrantsPath returns the grants file path.
func (c *Container) GrantsPath() string {
	return c.grantsPath
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
