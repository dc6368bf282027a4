// Package version exposes build metadata injected via ldflags and a
// cobra subcommand for printing it.
package version
