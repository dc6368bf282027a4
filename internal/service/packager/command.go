package packager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ps "github.com/mitchellh/go-ps"

	"aur-packager/internal/config"
	"aur-packager/internal/logger"
	"aur-packager/internal/manifest"
)

// Options contains inputs for the aur-packager entry point.
type Options struct {
	// ConfigPath is an optional path to the settings YAML file.
	ConfigPath string
	// ManifestPath overrides the configured manifest location.
	ManifestPath string
	// Dependency overrides the dependency whose features are replaced.
	Dependency string
	// Features overrides the feature list written for the dependency.
	Features []string
	// Tool overrides the packaging command argv.
	Tool []string
	// Strict makes a non-zero tool exit fail the run.
	Strict bool
	// DryRun stops the workflow after showing the pending change.
	DryRun bool
	// SaveConfig persists the resolved parameters to the settings file.
	SaveConfig bool
}

// packager drives the patch, invoke and restore sequence for one run.
// It is unexported—callers should use Run, which encapsulates setup and validation.
type packager struct {
	// cfg holds the resolved packaging parameters.
	cfg *config.Config
	// execute runs the external packaging tool.
	execute Executor
}

// Run executes the variant packaging workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "aur-packager")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	applyOverrides(cfg, opts)

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if opts.SaveConfig {
		if err := config.Save(opts.ConfigPath, cfg); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}

	p := &packager{
		cfg:     cfg,
		execute: runCommand,
	}

	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("packaging failed: %w", err)
	}

	logger.Info(ctx, "Packaging completed successfully")

	return nil
}

// applyOverrides layers non-empty option values over the loaded settings.
func applyOverrides(cfg *config.Config, opts *Options) {
	if opts.ManifestPath != "" {
		cfg.ManifestPath = opts.ManifestPath
	}

	if opts.Dependency != "" {
		cfg.Dependency = opts.Dependency
	}

	if len(opts.Features) > 0 {
		cfg.Features = opts.Features
	}

	if len(opts.Tool) > 0 {
		cfg.Tool = opts.Tool
	}

	if opts.Strict {
		cfg.Strict = true
	}

	cfg.DryRun = opts.DryRun
}

// Run patches the manifest, invokes the packaging tool and restores the
// manifest. The restore runs on every exit path once the patched manifest
// has been written; failures before that point leave the file untouched.
func (p *packager) Run(ctx context.Context) error {
	p.warnIfToolRunning(ctx)

	m, err := manifest.Load(p.cfg.ManifestPath)
	if err != nil {
		return err
	}

	previous, err := m.DependencyFeatures(p.cfg.Dependency)
	if err != nil {
		return fmt.Errorf("patch manifest: %w", err)
	}

	if err := m.SetDependencyFeatures(p.cfg.Dependency, p.cfg.Features); err != nil {
		return fmt.Errorf("patch manifest: %w", err)
	}

	logger.InfoKV(ctx, "Replacing dependency features",
		"manifest", m.Path(),
		"dependency", p.cfg.Dependency,
		"previous", previous,
		"requested", p.cfg.Features)

	if p.cfg.DryRun {
		return p.showPendingChanges(ctx, m)
	}

	if diff, derr := m.Diff(); derr == nil && diff != "" {
		logger.Debugf(ctx, "Manifest changes:\n%s", diff)
	}

	if err := m.Flush(); err != nil {
		return err
	}

	return p.buildAndRestore(ctx, m)
}

// showPendingChanges prints the diff a real run would apply and stops
// before anything touches the disk or the packaging tool.
func (p *packager) showPendingChanges(ctx context.Context, m *manifest.Manifest) error {
	diff, err := m.Diff()
	if err != nil {
		return err
	}

	logger.Infof(ctx, "Dry run, manifest left untouched. Pending changes:\n%s", diff)

	return nil
}

// buildAndRestore invokes the packaging tool against the already-written
// patched manifest and puts the snapshot back on every exit path,
// including tool failure, cancellation and panics.
func (p *packager) buildAndRestore(ctx context.Context, m *manifest.Manifest) (err error) {
	defer func() {
		if restoreErr := m.Restore(); restoreErr != nil {
			if err == nil {
				err = restoreErr
			} else {
				logger.ErrorKV(ctx, "Manifest restore failed", "error", restoreErr)
			}

			return
		}

		logger.InfoKV(ctx, "Manifest restored", "path", m.Path())

		if ok, verifyErr := m.Verify(); verifyErr != nil {
			logger.WarnKV(ctx, "Unable to verify restored manifest", "error", verifyErr)
		} else if !ok {
			logger.ErrorKV(ctx, "Restored manifest does not match snapshot", "path", m.Path())
		}
	}()

	name, args := p.cfg.Tool[0], p.cfg.Tool[1:]
	logger.InfoKV(ctx, "Invoking packaging tool", "command", p.cfg.Tool)

	if toolErr := p.execute(ctx, name, args...); toolErr != nil {
		if p.cfg.Strict {
			return fmt.Errorf("packaging tool: %w", toolErr)
		}

		// Non-strict mode: the tool's exit status does not gate the restore.
		logger.WarnKV(ctx, "Packaging tool reported failure, restoring anyway", "error", toolErr)
	}

	return nil
}

// warnIfToolRunning logs a warning when another instance of the packaging
// tool is already running. The manifest is not locked, so a concurrent
// build could observe the patched file. Advisory only—never blocks.
func (p *packager) warnIfToolRunning(ctx context.Context) {
	processes, err := ps.Processes()
	if err != nil {
		logger.DebugKV(ctx, "Unable to scan processes", "error", err)
		return
	}

	toolName := filepath.Base(p.cfg.Tool[0])
	thisProcessID := os.Getpid()

	for _, process := range processes {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == toolName {
			logger.WarnKV(ctx, "Packaging tool appears to be running already",
				"executable", toolName,
				"pid", process.Pid())

			return
		}
	}
}
