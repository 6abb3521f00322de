// Package registry provides the catalog of supported guest languages.
//
// The registry package maps language identifiers (and their common
// aliases) to toolchain descriptors: the source file name, the compile
// and run command templates, and the per-language default limits.
// Lookups are case-insensitive and O(1). Toolchain availability is
// probed lazily on first use and cached for the process lifetime, so a
// missing compiler never blocks other languages.
//
// The built-in catalog covers python, nodejs, go and cpp; additional
// languages are loaded from a YAML catalog file, never from code.
package registry
