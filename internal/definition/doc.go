// Package definition models an automix composition request and loads it from
// disk.
//
// A definition file is YAML, optionally written as a Go text/template that is
// rendered with user supplied key/value data (sprig functions available)
// before parsing. The decoded document is validated against a JSON schema
// derived from the Go types, then checked semantically: tempo must be
// positive, every part needs a bar length, and mixes may only reference
// declared parts. Clip paths are resolved relative to the definition file.
package definition
