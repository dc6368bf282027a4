package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLoad_MissingFileReturnsDefaults verifies settings are optional.
func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, DefaultManifestFilename, cfg.ManifestPath)
	require.Equal(t, DefaultDependency, cfg.Dependency)
	require.Equal(t, []string{"avif-native"}, cfg.Features)
	require.Equal(t, []string{"cargo", "aur"}, cfg.Tool)
	require.False(t, cfg.Strict)
}

// TestLoad_PartialFileKeepsDefaults ensures unset fields fall back.
func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	contents := "dependency: ravif\nfeatures:\n  - threading\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ravif", cfg.Dependency)
	require.Equal(t, []string{"threading"}, cfg.Features)
	require.Equal(t, DefaultManifestFilename, cfg.ManifestPath)
	require.Equal(t, []string{"cargo", "aur"}, cfg.Tool)
}

// TestLoad_Malformed surfaces YAML errors.
func TestLoad_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dependency: [broken"), 0o600))

	cfg, err := Load(path)
	require.Error(t, err)
	require.ErrorContains(t, err, "unmarshal settings")
	require.Nil(t, cfg)
}

// TestSaveLoad_Roundtrip ensures Save followed by Load returns equal settings.
func TestSaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	want := &Config{
		ManifestPath: "crates/viewer/Cargo.toml",
		Dependency:   "image",
		Features:     []string{"avif-native", "webp"},
		Tool:         []string{"cargo", "aur"},
		Strict:       true,
	}

	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestSave_NilConfig rejects a nil configuration.
func TestSave_NilConfig(t *testing.T) {
	t.Parallel()

	err := Save(filepath.Join(t.TempDir(), "settings.yaml"), nil)
	require.ErrorIs(t, err, errConfigIsNotSet)
}

// TestValidate covers every required field.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(Default()))
	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)

	cases := map[string]struct {
		mutate func(*Config)
		want   error
	}{
		"manifest path": {
			mutate: func(c *Config) { c.ManifestPath = "" },
			want:   errManifestRequired,
		},
		"dependency": {
			mutate: func(c *Config) { c.Dependency = "" },
			want:   errDependencyRequired,
		},
		"features": {
			mutate: func(c *Config) { c.Features = nil },
			want:   errFeaturesRequired,
		},
		"tool": {
			mutate: func(c *Config) { c.Tool = nil },
			want:   errToolRequired,
		},
		"tool executable": {
			mutate: func(c *Config) { c.Tool = []string{""} },
			want:   errToolRequired,
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tc.mutate(cfg)
			require.ErrorIs(t, Validate(cfg), tc.want)
		})
	}
}
