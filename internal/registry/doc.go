// Package registry provides the central "glue" for the back-end modules.
//
// Each compiled-in module registers its benchmarks by name. Scripts refer to
// benchmarks by that name, and Validate checks a loaded model against the
// registry at startup so that a typo or a missing required factor is
// reported before any sweep begins.
package registry
