// Package config loads, normalizes, and validates automix configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// AUTOMIX_WORK_DIR and AUTOMIX_FFMPEG. Always obtain settings through this
// package so the render pipeline receives sanitized paths and clear
// validation errors.
package config
