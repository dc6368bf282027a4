// Package manifest reads, patches and restores TOML build manifests.
//
// A Manifest keeps two representations of the same file: the verbatim
// bytes captured at load time and a parsed generic document. Feature
// mutations go through the document and are written with Flush; Restore
// puts the captured bytes back, so formatting and comments survive a
// patch/restore cycle untouched.
package manifest
