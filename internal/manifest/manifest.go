package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pmezard/go-difflib/difflib"
)

// DefaultFileMode is used when overwriting the manifest file.
// Build manifests are world-readable, unlike settings files.
const DefaultFileMode = 0o644

var (
	// ErrNoDependencies is returned when the manifest lacks a dependencies table.
	ErrNoDependencies = errors.New("manifest has no dependencies table")
	// ErrDependencyNotFound is returned when the requested dependency is absent.
	ErrDependencyNotFound = errors.New("dependency not found in manifest")
	// ErrDependencyNotTable is returned when the dependency is declared as a
	// bare version string and cannot carry a feature list.
	ErrDependencyNotTable = errors.New("dependency is not a table")
)

// Manifest is a build manifest parsed from TOML together with a verbatim
// snapshot of the file bytes captured at load time. Mutations operate on
// the parsed document; Restore writes the snapshot back byte-for-byte and
// never re-serializes.
type Manifest struct {
	// path is the filesystem location of the manifest.
	path string
	// original holds the raw file bytes captured before any mutation.
	original []byte
	// checksum is the digest of the snapshot, used by Verify.
	checksum uint64
	// doc is the parsed document that mutations operate on.
	doc map[string]any
}

// Load reads the manifest file, retains its bytes as the restore snapshot,
// and parses the same bytes into an addressable document.
func Load(path string) (*Manifest, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	return &Manifest{
		path:     path,
		original: contents,
		checksum: xxhash.Sum64(contents),
		doc:      doc,
	}, nil
}

// Path returns the manifest's filesystem location.
func (m *Manifest) Path() string {
	return m.path
}

// Original returns the snapshot bytes captured at load time.
func (m *Manifest) Original() []byte {
	return m.original
}

// dependency resolves the table declaring the named dependency.
func (m *Manifest) dependency(name string) (map[string]any, error) {
	deps, ok := m.doc["dependencies"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w", m.path, ErrNoDependencies)
	}

	entry, found := deps[name]
	if !found {
		return nil, fmt.Errorf("%s: %w", name, ErrDependencyNotFound)
	}

	table, ok := entry.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrDependencyNotTable)
	}

	return table, nil
}

// DependencyFeatures reports the feature flags currently configured for the
// named dependency. A dependency without a features entry yields nil.
func (m *Manifest) DependencyFeatures(name string) ([]string, error) {
	table, err := m.dependency(name)
	if err != nil {
		return nil, err
	}

	list, ok := table["features"].([]any)
	if !ok {
		return nil, nil
	}

	features := make([]string, 0, len(list))

	for _, item := range list {
		if s, ok := item.(string); ok {
			features = append(features, s)
		}
	}

	return features, nil
}

// SetDependencyFeatures replaces the dependency's feature list with exactly
// the provided flags, discarding whatever was configured before.
func (m *Manifest) SetDependencyFeatures(name string, features []string) error {
	table, err := m.dependency(name)
	if err != nil {
		return err
	}

	list := make([]any, 0, len(features))
	for _, feature := range features {
		list = append(list, feature)
	}

	table["features"] = list

	return nil
}

// Encode serializes the current document to TOML.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := toml.Marshal(m.doc)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	return data, nil
}

// Flush overwrites the manifest file with the current document encoding.
func (m *Manifest) Flush() error {
	data, err := m.Encode()
	if err != nil {
		return err
	}

	if err := os.WriteFile(m.path, data, DefaultFileMode); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// Restore overwrites the manifest file with the load-time snapshot.
func (m *Manifest) Restore() error {
	if err := os.WriteFile(m.path, m.original, DefaultFileMode); err != nil {
		return fmt.Errorf("restore manifest: %w", err)
	}

	return nil
}

// Verify reports whether the file on disk matches the load-time snapshot.
func (m *Manifest) Verify() (bool, error) {
	contents, err := os.ReadFile(m.path)
	if err != nil {
		return false, fmt.Errorf("read manifest: %w", err)
	}

	return xxhash.Sum64(contents) == m.checksum, nil
}

// Diff renders a unified diff between the snapshot and the current
// document encoding.
func (m *Manifest) Diff() (string, error) {
	patched, err := m.Encode()
	if err != nil {
		return "", err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(m.original)),
		B:        difflib.SplitLines(string(patched)),
		FromFile: m.path,
		ToFile:   m.path + " (patched)",
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("diff manifest: %w", err)
	}

	return diff, nil
}
