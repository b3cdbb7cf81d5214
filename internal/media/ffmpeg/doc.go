// Package ffmpeg is the Media Engine backed by the ffmpeg and ffprobe
// binaries.
//
// Compile turns a graph.Node tree into a single ffmpeg invocation: one -i per
// Input occurrence, a -filter_complex chain with generated stream labels, and
// a -map of the root label to the output file. Engine runs the invocation and
// probes sources through the ffprobe wrapper.
package ffmpeg
