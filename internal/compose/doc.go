// Package compose implements the bar arithmetic and the Part Composer.
//
// All timing is expressed in bars of four beats. The composer derives, per
// clip usage, how many bars of the clip form the repeating unit, how many
// extra repetitions tile the part exactly, and builds the per-clip media
// chain: trim, optional leading pad, loop, filters, final trim. A part is the
// unnormalized weighted mix of its clip chains.
package compose
