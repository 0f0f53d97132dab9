package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/capbridge/internal/application/ports"
	"github.com/reglet-dev/capbridge/internal/infrastructure/redaction"
	"github.com/reglet-dev/capbridge/internal/infrastructure/system"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newListCmd())
}

// namespaceView is the rendered form of one configured namespace.
type namespaceView struct {
	Settings     map[string]any   `json:"settings,omitempty" yaml:"settings,omitempty"`
	Mount        string           `json:"mount" yaml:"mount"`
	Plugin       string           `json:"plugin" yaml:"plugin"`
	Version      string           `json:"version" yaml:"version"`
	Description  string           `json:"description" yaml:"description"`
	Capabilities []capabilityView `json:"capabilities" yaml:"capabilities"`
}

type capabilityView struct {
	Name string `json:"name" yaml:"name"`
	Mode string `json:"mode" yaml:"mode"`
}

func newListCmd() *cobra.Command {
	opts := DefaultCommonOptions()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the namespaces and capabilities guests will see",
		Example: `  capbridge list
  capbridge list --format json`,
		Args: cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.ValidateFlags()
		},
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, _ []string) error {
			cfg := ctx.Container.SystemConfig()
			svc := ctx.Container.NamespaceService()

			namespaces, err := svc.Build(ctx.Context, cfg.Namespaces)
			if err != nil {
				return err
			}

			views := buildViews(
				svc.Describe(namespaces),
				ctx.Container.Catalog(),
				cfg.Namespaces,
				ctx.Container.Redactor(),
			)
			return renderNamespaces(cmd.OutOrStdout(), opts.Format, views)
		}),
	}

	opts.RegisterFormatFlag(cmd)
	return cmd
}

// buildViews joins namespace descriptions with plugin metadata and the
// configured settings. Settings are redacted before display.
func buildViews(
	infos []ports.NamespaceInfo,
	catalog ports.PluginCatalog,
	configs []system.NamespaceConfig,
	redactor *redaction.Redactor,
) []namespaceView {
	settings := make(map[string]map[string]any, len(configs))
	for _, cfg := range configs {
		settings[cfg.MountPath()] = cfg.Settings
	}

	views := make([]namespaceView, 0, len(infos))
	for _, info := range infos {
		view := namespaceView{
			Mount:    info.Mount,
			Plugin:   info.Plugin,
			Version:  info.Version,
			Settings: redactor.Settings(settings[info.Mount]),
		}
		if p, ok := catalog.Lookup(info.Plugin); ok {
			view.Description = p.Description()
		}
		for _, c := range info.Capabilities {
			view.Capabilities = append(view.Capabilities, capabilityView{Name: c.Name, Mode: c.Mode.String()})
		}
		views = append(views, view)
	}
	return views
}

func renderNamespaces(w io.Writer, format string, views []namespaceView) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case "yaml":
		data, err := yaml.MarshalWithOptions(views, yaml.IndentSequence(true))
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return renderTable(w, views)
	}
}

func renderTable(w io.Writer, views []namespaceView) error {
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "No namespaces configured.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	if _, err := fmt.Fprintln(tw, "PATH\tMODE\tPLUGIN\tVERSION"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, v := range views {
		for _, c := range v.Capabilities {
			if _, err := fmt.Fprintf(tw, "%s/%s\t%s\t%s\t%s\n", v.Mount, c.Name, c.Mode, v.Plugin, v.Version); err != nil {
				return fmt.Errorf("failed to write namespace info: %w", err)
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}
