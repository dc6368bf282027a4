// Package config defines the packaging parameters used by aur-packager and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the manifest path, the dependency whose features
// are replaced, the replacement feature list and the packaging command.
// All fields default to the stock Cargo.toml/avif-native workflow.
package config
