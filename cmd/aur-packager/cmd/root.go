package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"aur-packager/internal/config"
	"aur-packager/internal/logger"
	"aur-packager/internal/service/packager"
	"aur-packager/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// manifestPath of the build manifest to patch and restore.
	manifestPath string
	// dependency whose feature flags are replaced for the build.
	dependency string
	// features requested for the dependency while the tool runs.
	features []string
	// tool is the packaging command argv invoked against the patched manifest.
	tool []string
	// strict makes a non-zero tool exit fail the run.
	strict bool
	// dryRun shows the pending manifest change without writing or invoking.
	dryRun bool
	// saveConfig persists the resolved parameters to the settings file.
	saveConfig bool
	// logLevel controls logger verbosity.
	logLevel string

	// rootCmd represents the base command that builds the package variant.
	rootCmd = &cobra.Command{
		Use:   "aur-packager",
		Short: "Build an AUR package variant against a temporarily patched manifest",
		Long: `Patches the build manifest so the configured dependency requests an
alternate feature set, runs the packaging tool against the patched file,
and restores the manifest to its original content afterwards.

A successful run leaves the manifest byte-identical to how it was found.
By default the packaging tool's exit status does not fail the run; pass
--strict to surface it.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &packager.Options{
				ConfigPath:   configPath,
				ManifestPath: manifestPath,
				Dependency:   dependency,
				Features:     features,
				Tool:         tool,
				Strict:       strict,
				DryRun:       dryRun,
				SaveConfig:   saveConfig,
			}

			return packager.Run(ctx, options)
		},
	}
)

// Execute runs the aur-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		StringVarP(&manifestPath, "manifest", "m", "", "path to the build manifest (defaults to "+config.DefaultManifestFilename+")")
	rootCmd.Flags().
		StringVarP(&dependency, "dependency", "d", "", "dependency whose features are replaced (defaults to "+config.DefaultDependency+")")
	rootCmd.Flags().StringSliceVarP(&features, "feature", "f", nil, "feature flag to request (repeatable, defaults to avif-native)")
	rootCmd.Flags().StringSliceVarP(&tool, "tool", "t", nil, "packaging command and arguments (defaults to cargo,aur)")
	rootCmd.Flags().BoolVar(&strict, "strict", false, "fail the run when the packaging tool exits non-zero")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the pending manifest change without writing or invoking anything")
	rootCmd.Flags().BoolVar(&saveConfig, "save-config", false, "persist the resolved parameters to the settings file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "logging level (debug, info, warn, error)")
}
