// Package main hosts the automix CLI entrypoint and command graph.
//
// The Cobra-based command tree loads a definition file, turns --clip flags
// into named clips, and hands the result to the render orchestrator. It
// centralizes configuration resolution and structured logging setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
