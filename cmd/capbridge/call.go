package main

import (
	"fmt"
	"io"
	"os"

	"github.com/reglet-dev/capbridge/internal/application/services"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newCallCmd())
}

type callOptions struct {
	CommonOptions
	Stdin bool
}

func newCallCmd() *cobra.Command {
	opts := callOptions{CommonOptions: DefaultCommonOptions()}

	cmd := &cobra.Command{
		Use:   "call <namespace>/<capability> [payload]",
		Short: "Exchange one request with a capability from the host",
		Long: `Open a capability the way a guest would, write the payload, print the
response and close. Without a payload the capability is queried read-only.

Namespace state lives only for the duration of the command.`,
		Example: `  capbridge call counter/incr 5
  capbridge call ident/uuid
  echo '{"key":"a","value":1}' | capbridge call kv/set --stdin`,
		Args: cobra.RangeArgs(1, 2),
		PreRunE: func(_ *cobra.Command, args []string) error {
			if opts.Stdin && len(args) == 2 {
				return fmt.Errorf("--stdin and a payload argument are mutually exclusive")
			}
			return opts.ValidateFlags()
		},
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			payload, err := readPayload(args, opts.Stdin, os.Stdin)
			if err != nil {
				return err
			}

			namespaces, err := ctx.Container.NamespaceService().Build(ctx.Context, ctx.Container.SystemConfig().Namespaces)
			if err != nil {
				return err
			}

			callCtx, cancel := opts.ApplyToContext(ctx.Context)
			defer cancel()

			out, err := services.NewCallService(namespaces).Call(callCtx, args[0], payload)
			if err != nil {
				return err
			}
			return writeResponse(cmd.OutOrStdout(), out)
		}),
	}

	opts.RegisterTimeoutFlag(cmd)
	cmd.Flags().BoolVar(&opts.Stdin, "stdin", false, "Read the payload from standard input")

	return cmd
}

// readPayload returns nil when the call should be a read-only query.
func readPayload(args []string, fromStdin bool, stdin io.Reader) ([]byte, error) {
	switch {
	case len(args) == 2:
		return []byte(args[1]), nil
	case fromStdin:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}
		if data == nil {
			data = []byte{}
		}
		return data, nil
	default:
		return nil, nil
	}
}

// writeResponse prints the response followed by a newline unless it
// already ends with one.
func writeResponse(w io.Writer, out []byte) error {
	if len(out) == 0 {
		return nil
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	if out[len(out)-1] != '\n' {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}
