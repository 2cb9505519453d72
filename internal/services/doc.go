// Package services defines the error markers and context helpers shared by
// the render pipeline and its external tool wrappers.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and pipeline stage names so
//     log lines from ffmpeg wrappers and workers can be correlated.
//   - Structured error markers plus the Wrap helper that classify failures
//     (external tool, validation, configuration, missing input, cancellation)
//     for the CLI exit path.
//
// Wrap errors returned from ffmpeg, ffprobe, and filesystem steps with these
// markers so callers can branch with errors.Is instead of string matching.
package services
