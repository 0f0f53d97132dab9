package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/reglet-dev/capbridge/internal/application/ports"
	"github.com/reglet-dev/capbridge/internal/application/services"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

type runOptions struct {
	CommonOptions
	Parallel int
	Trust    bool
}

func newRunCmd() *cobra.Command {
	opts := runOptions{CommonOptions: DefaultCommonOptions()}

	cmd := &cobra.Command{
		Use:   "run <guest.wasm>... [-- guest args]",
		Short: "Run WebAssembly guests against the configured namespaces",
		Long: `Run one or more WASI command modules. Every configured namespace is
mounted into each guest, and guests started together share capability state.`,
		Example: `  capbridge run demo.wasm
  capbridge run a.wasm b.wasm --parallel 2
  capbridge run demo.wasm --trust -- --count 3`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.Parallel < 0 {
				return fmt.Errorf("--parallel must not be negative")
			}
			return opts.ValidateFlags()
		},
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			paths, guestArgs := splitGuestArgs(cmd, args)
			if len(paths) == 0 {
				return fmt.Errorf("no guest modules given")
			}

			guests, err := readGuests(paths)
			if err != nil {
				return err
			}

			runCtx, cancel := opts.ApplyToContext(ctx.Context)
			defer cancel()

			return ctx.Container.RunGuestsUseCase().Execute(runCtx, services.RunGuestsRequest{
				Guests:   guests,
				Args:     guestArgs,
				TrustAll: opts.Trust,
			})
		}),
	}

	opts.RegisterTimeoutFlag(cmd)
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 0, "Maximum guests running at once (0 uses the bridge config)")
	cmd.Flags().BoolVar(&opts.Trust, "trust", false, "Mount every namespace without asking for grants")

	return cmd
}

// splitGuestArgs separates module paths from arguments after "--".
func splitGuestArgs(cmd *cobra.Command, args []string) (paths, guestArgs []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}
	return args[:dash], args[dash:]
}

func readGuests(paths []string) ([]ports.GuestSource, error) {
	guests := make([]ports.GuestSource, 0, len(paths))
	for _, path := range paths {
		//nolint:gosec // G304: guest paths are user-provided
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read guest: %w", err)
		}
		guests = append(guests, ports.GuestSource{Name: filepath.Base(path), Bytes: data})
	}
	return guests, nil
}
