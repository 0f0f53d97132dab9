package main

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/reglet-dev/capbridge/internal/infrastructure/wasm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "capbridge",
	Short: "Expose host capabilities to WebAssembly guests as files",
	Long: `capbridge mounts named host capabilities into WebAssembly guests as a
virtual directory. A guest opens a capability by name, writes a request and
reads the response; structural filesystem operations are rejected.

Each plugin contributes one namespace, mounted at /<plugin> by default.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. A guest's non-zero exit status becomes the
// process exit status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *wasm.ExitError
		if errors.As(err, &exitErr) {
			slog.Error("guest failed", "guest", exitErr.Guest, "code", exitErr.Code)
			os.Exit(int(exitErr.Code))
		}
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "CLI config file (default is $HOME/.capbridge.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("bridge-config", "", "bridge config file (default is $HOME/.capbridge/config.yaml)")
	rootCmd.PersistentFlags().String("security-level", "", "grant policy: strict, standard or permissive (overrides the bridge config)")

	_ = viper.BindPFlag("bridge_config", rootCmd.PersistentFlags().Lookup("bridge-config"))
	_ = viper.BindPFlag("security_level", rootCmd.PersistentFlags().Lookup("security-level"))
}

// initConfig loads configuration from the config file and environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("failed to find home directory", "error", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".capbridge")
	}

	// CAPBRIDGE_BRIDGE_CONFIG, CAPBRIDGE_SECURITY_LEVEL, ...
	viper.SetEnvPrefix("capbridge")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "file", viper.ConfigFileUsed())
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose || viper.GetBool("verbose") {
		level = slog.LevelDebug
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
