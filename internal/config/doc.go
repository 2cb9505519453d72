// Package config loads, normalizes, and validates vidblur configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VIDBLUR_FFMPEG. The Config type centralizes every knob the CLI and render
// pipeline need: source/output locations, sample size, worker counts, encoder
// settings, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, derived output filenames, and clear validation errors.
package config
