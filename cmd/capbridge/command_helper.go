package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/reglet-dev/capbridge/internal/infrastructure/container"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CommandContext provides common command dependencies.
type CommandContext struct {
	Container *container.Container
	Logger    *slog.Logger
	Context   context.Context
}

// CommandHandler is a function that executes with initialized dependencies.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// withContainer wraps a command handler with container initialization.
// Handles common setup: config loading, logger creation, dependency injection.
func withContainer(handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		parallelism, err := parallelismFlag(cmd)
		if err != nil {
			return err
		}

		c, err := container.New(container.Options{
			SystemConfigPath: viper.GetString("bridge_config"),
			SecurityLevel:    viper.GetString("security_level"),
			Parallelism:      parallelism,
			Stdin:            os.Stdin,
			Stdout:           cmd.OutOrStdout(),
			Stderr:           cmd.ErrOrStderr(),
			Logger:           logger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		return handler(&CommandContext{
			Container: c,
			Logger:    logger,
			Context:   ctx,
		}, cmd, args)
	}
}

// parallelismFlag returns the --parallel value, or 0 when the command has no
// such flag.
func parallelismFlag(cmd *cobra.Command) (int, error) {
	if cmd.Flags().Lookup("parallel") == nil {
		return 0, nil
	}
	n, err := cmd.Flags().GetInt("parallel")
	if err != nil {
		return 0, fmt.Errorf("invalid --parallel flag: %w", err)
	}
	return n, nil
}
