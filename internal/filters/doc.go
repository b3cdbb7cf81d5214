// Package filters resolves filter references into concrete Media Engine
// operations.
//
// A Catalog is built once per run from the definition's filter aliases. Every
// alias chain is followed to its terminal inline definition when the catalog
// is built, so later resolution is a pure lookup plus unit conversion: bar
// relative fields (enable from/to, fade start_time/duration) are multiplied
// by the bar time in seconds.
package filters
