package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/capbridge/internal/application/ports"
	"github.com/reglet-dev/capbridge/internal/infrastructure/system"
)

// RunGuestsRequest describes one run.
type RunGuestsRequest struct {
	Guests   []ports.GuestSource
	Args     []string
	TrustAll bool
}

// RunGuestsUseCase builds the configured namespaces, authorizes them and
// runs guests against them.
type RunGuestsUseCase struct {
	config     *system.Config
	namespaces *NamespaceService
	gatekeeper *GrantGatekeeper
	runtimes   ports.GuestRuntimeFactory
	logger     *slog.Logger
}

// NewRunGuestsUseCase creates the use case.
func NewRunGuestsUseCase(
	config *system.Config,
	namespaces *NamespaceService,
	gatekeeper *GrantGatekeeper,
	runtimes ports.GuestRuntimeFactory,
	logger *slog.Logger,
) *RunGuestsUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunGuestsUseCase{
		config:     config,
		namespaces: namespaces,
		gatekeeper: gatekeeper,
		runtimes:   runtimes,
		logger:     logger,
	}
}

// Execute runs the request. Namespace state lives only for this call.
func (uc *RunGuestsUseCase) Execute(ctx context.Context, req RunGuestsRequest) error {
	if len(req.Guests) == 0 {
		return fmt.Errorf("no guests to run")
	}

	namespaces, err := uc.namespaces.Build(ctx, uc.config.Namespaces)
	if err != nil {
		return err
	}
	if err := uc.gatekeeper.Authorize(ctx, uc.namespaces.Describe(namespaces), req.TrustAll); err != nil {
		return err
	}

	runtime, err := uc.runtimes.NewRuntime(ctx, namespaces)
	if err != nil {
		return fmt.Errorf("failed to create runtime: %w", err)
	}
	defer func() {
		if err := runtime.Close(ctx); err != nil {
			uc.logger.WarnContext(ctx, "failed to close runtime", "error", err)
		}
	}()

	uc.logger.InfoContext(ctx, "running guests",
		"guests", len(req.Guests),
		"namespaces", len(namespaces))
	return runtime.RunGuests(ctx, req.Guests, req.Args)
}
