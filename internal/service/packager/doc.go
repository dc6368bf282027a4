// Package packager implements the variant packaging workflow: patch the
// build manifest so one dependency requests an alternate feature set, run
// the packaging tool against the patched file, and restore the manifest
// to its captured original content.
//
// The restore is unconditional once the patched manifest has been
// written—the tool's exit status does not gate it. Failures before the
// write leave the manifest untouched.
package packager
