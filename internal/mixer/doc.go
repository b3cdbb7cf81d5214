// Package mixer implements the Mix Assembler.
//
// Each segment of a mix becomes a track: the unnormalized weighted mix of the
// referenced part artifacts. Tracks are concatenated in declared order into
// the mix master, followed by a tempo/pitch transform when either ratio
// differs from 1.
package mixer
