package services

import (
	"context"
	"log/slog"

	apperrors "github.com/reglet-dev/capbridge/internal/application/errors"
	"github.com/reglet-dev/capbridge/internal/application/ports"
	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	"github.com/reglet-dev/capbridge/internal/infrastructure/system"
)

// GrantGatekeeper decides whether namespaces exposing writable capabilities
// may be mounted, prompting and persisting decisions as the security level
// requires.
type GrantGatekeeper struct {
	store    ports.GrantStore
	prompter ports.GrantPrompter
	level    system.SecurityLevel
}

// NewGrantGatekeeper creates a new grant gatekeeper.
func NewGrantGatekeeper(store ports.GrantStore, prompter ports.GrantPrompter, level system.SecurityLevel) *GrantGatekeeper {
	return &GrantGatekeeper{
		store:    store,
		prompter: prompter,
		level:    level,
	}
}

// Authorize returns nil when every namespace may be mounted.
// Read-only namespaces never need a grant. Writable namespaces are:
//   - mounted silently under permissive
//   - mounted with a warning under standard
//   - checked against saved grants under strict, prompting for the rest
func (g *GrantGatekeeper) Authorize(ctx context.Context, namespaces []ports.NamespaceInfo, trustAll bool) error {
	if trustAll {
		slog.WarnContext(ctx, "Auto-granting all namespaces (--trust enabled)")
		return nil
	}

	var writable []ports.NamespaceInfo
	for _, ns := range namespaces {
		if ns.Writable() {
			writable = append(writable, ns)
		}
	}
	if len(writable) == 0 {
		return nil
	}

	switch g.level {
	case system.SecurityLevelPermissive:
		return nil
	case system.SecurityLevelStrict:
		return g.authorizeStrict(ctx, writable)
	default:
		for _, ns := range writable {
			slog.WarnContext(ctx, "mounting writable namespace",
				"mount", ns.Mount,
				"plugin", ns.Plugin)
		}
		return nil
	}
}

func (g *GrantGatekeeper) authorizeStrict(ctx context.Context, writable []ports.NamespaceInfo) error {
	existing, err := g.store.Load()
	if err != nil {
		slog.WarnContext(ctx, "failed to load saved grants", "path", g.store.ConfigPath(), "error", err)
		existing = capabilities.NewGrant()
	}

	missing := findMissing(writable, existing)
	if len(missing) == 0 {
		return nil
	}

	if !g.prompter.IsInteractive() {
		return g.prompter.FormatNonInteractiveError(missing)
	}

	shouldSave := false
	for _, ns := range missing {
		granted, always, err := g.prompter.PromptForNamespace(ns)
		if err != nil {
			return err
		}
		if !granted {
			return apperrors.NewGrantError("namespace denied by user", ns.Mount)
		}
		if always {
			existing.Add(ns.Mount)
			shouldSave = true
		}
	}

	if shouldSave {
		if err := g.store.Save(existing); err != nil {
			slog.WarnContext(ctx, "failed to save grants", "path", g.store.ConfigPath(), "error", err)
		} else {
			slog.InfoContext(ctx, "grants saved", "path", g.store.ConfigPath())
		}
	}
	return nil
}

// findMissing returns the namespaces whose mount is not granted.
func findMissing(namespaces []ports.NamespaceInfo, granted capabilities.Grant) []ports.NamespaceInfo {
	var missing []ports.NamespaceInfo
	for _, ns := range namespaces {
		if !granted.Contains(ns.Mount) {
			missing = append(missing, ns)
		}
	}
	return missing
}
