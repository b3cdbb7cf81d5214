// Package render implements the Render Orchestrator.
//
// A run probes every clip, realizes one intermediate artifact per part, one
// per mix track, then every mix master, and publishes the masters to their
// output locations. Stages are strict barriers: no track starts before every
// part exists, no master before every track. Within a stage artifacts render
// concurrently up to the configured limit, and a failure stops anything not
// yet started. Intermediates live in a private run directory under the work
// root that is removed exactly once when the run ends, whatever the outcome.
// Output directories are guarded by an advisory file lock for the duration
// of the run.
package render
