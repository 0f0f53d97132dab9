package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/reglet-dev/capbridge/internal/application/ports"
	"github.com/reglet-dev/capbridge/internal/infrastructure/adapters"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins"
	"github.com/reglet-dev/capbridge/internal/infrastructure/system"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type initOptions struct {
	Output string
	Yes    bool
	Force  bool
}

func init() {
	rootCmd.AddCommand(newInitCmd())
}

func newInitCmd() *cobra.Command {
	opts := initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a bridge configuration",
		Long: `Choose the plugins to mount and the grant policy, then write the bridge
configuration. With --yes every builtin plugin is mounted at its default
path under the standard policy.`,
		Example: `  capbridge init
  capbridge init --yes --output ./bridge.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveInitPath(opts.Output)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !opts.Force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			catalog := plugins.Builtin()
			var cfg *system.Config
			if opts.Yes {
				cfg = defaultInitConfig(catalog)
			} else {
				cfg, err = promptInitConfig(catalog)
				if err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return fmt.Errorf("init cancelled")
					}
					return err
				}
			}

			if err := system.NewConfigLoader().Save(path, cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Bridge configuration saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Configuration path (default ~/.capbridge/config.yaml)")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Accept defaults without prompting")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing configuration")

	return cmd
}

func resolveInitPath(output string) (string, error) {
	if output != "" {
		return output, nil
	}
	if p := viper.GetString("bridge_config"); p != "" {
		return p, nil
	}
	dir, err := adapters.DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// defaultInitConfig mounts every plugin of the catalog explicitly.
func defaultInitConfig(catalog ports.PluginCatalog) *system.Config {
	cfg := system.DefaultConfig()
	for _, p := range catalog.List() {
		cfg.Namespaces = append(cfg.Namespaces, system.NamespaceConfig{Plugin: p.Name()})
	}
	return cfg
}

func promptInitConfig(catalog ports.PluginCatalog) (*system.Config, error) {
	options := make([]huh.Option[string], 0, len(catalog.List()))
	for _, p := range catalog.List() {
		label := fmt.Sprintf("%s %s (%s)", p.Name(), p.Version(), p.Description())
		options = append(options, huh.NewOption(label, p.Name()).Selected(true))
	}

	var (
		selected []string
		level    = string(system.SecurityLevelStandard)
		hashMode bool
	)

	if err := huh.NewMultiSelect[string]().
		Title("Select plugins to mount").
		Options(options...).
		Value(&selected).
		Run(); err != nil {
		return nil, err
	}

	if err := huh.NewSelect[string]().
		Title("Grant policy for writable namespaces").
		Options(
			huh.NewOption("Standard (mount with a warning)", string(system.SecurityLevelStandard)),
			huh.NewOption("Strict (ask before mounting)", string(system.SecurityLevelStrict)),
			huh.NewOption("Permissive (mount silently)", string(system.SecurityLevelPermissive)),
		).
		Value(&level).
		Run(); err != nil {
		return nil, err
	}

	if err := huh.NewConfirm().
		Title("Show hashes instead of [REDACTED] for scrubbed secrets?").
		Value(&hashMode).
		Run(); err != nil {
		return nil, err
	}

	return buildInitConfig(selected, level, hashMode), nil
}

func buildInitConfig(selected []string, level string, hashMode bool) *system.Config {
	cfg := system.DefaultConfig()
	for _, name := range selected {
		cfg.Namespaces = append(cfg.Namespaces, system.NamespaceConfig{Plugin: name})
	}
	cfg.Security.Level = level
	if hashMode {
		cfg.Redaction.HashMode.Enabled = true
		cfg.Redaction.HashMode.Salt = uuid.NewString()
	}
	return cfg
}
