package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the packaging parameters for an aur-packager run.
type Config struct {
	// ManifestPath is the build manifest that gets patched and restored.
	ManifestPath string `yaml:"manifest_path"`
	// Dependency is the manifest dependency whose features are replaced.
	Dependency string `yaml:"dependency"`
	// Features is the feature list written for the dependency.
	Features []string `yaml:"features"`
	// Tool is the packaging command argv invoked against the patched manifest.
	Tool []string `yaml:"tool"`
	// Strict makes a non-zero tool exit fail the run.
	Strict bool `yaml:"strict"`
	// DryRun is set at runtime to stop the workflow before any write.
	// It is not persisted to YAML.
	DryRun bool `yaml:"-"`
}

const (
	// DefaultConfigFilename is the default filename for packaging settings.
	DefaultConfigFilename = "aur-packager-settings.yaml"

	// DefaultManifestFilename is the manifest patched when none is configured.
	DefaultManifestFilename = "Cargo.toml"

	// DefaultDependency is the dependency whose features are replaced by default.
	DefaultDependency = "image"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// DefaultFeatures selects the native AVIF codec backend.
	DefaultFeatures = []string{"avif-native"}
	// DefaultTool is the packaging command run against the patched manifest.
	DefaultTool = []string{"cargo", "aur"}

	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errManifestRequired is returned when the manifest path is missing.
	errManifestRequired = errors.New("manifest path must be provided")
	// errDependencyRequired is returned when the dependency name is missing.
	errDependencyRequired = errors.New("dependency name must be provided")
	// errFeaturesRequired is returned when no feature flags are configured.
	errFeaturesRequired = errors.New("at least one feature must be provided")
	// errToolRequired is returned when the packaging command argv is empty.
	errToolRequired = errors.New("packaging tool command must be provided")
)

// Default returns a configuration reproducing the stock workflow:
// patch Cargo.toml so the image dependency requests avif-native,
// then run `cargo aur`.
func Default() *Config {
	return &Config{
		ManifestPath: DefaultManifestFilename,
		Dependency:   DefaultDependency,
		Features:     append([]string(nil), DefaultFeatures...),
		Tool:         append([]string(nil), DefaultTool...),
	}
}

// Load reads configuration from the provided path and validates it.
// Settings are optional: a missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided configuration for required fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ManifestPath == "" {
		return errManifestRequired
	}

	if cfg.Dependency == "" {
		return errDependencyRequired
	}

	if len(cfg.Features) == 0 {
		return errFeaturesRequired
	}

	if len(cfg.Tool) == 0 || cfg.Tool[0] == "" {
		return errToolRequired
	}

	return nil
}
