// Package clips holds the Clip Registry: clip names mapped to their source
// files and the duration and sample rate measured by the Media Engine.
//
// Clips are probed once per run and never change afterwards. An optional
// SQLite probe cache remembers measurements across runs, keyed by absolute
// file location together with size and modification time so edited files
// are probed again.
package clips
