// Package deps reports whether the external binaries and ffmpeg filters the
// Media Engine relies on are available.
package deps
