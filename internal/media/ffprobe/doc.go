// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - VideoInfo: the frame-level view of the first video stream
//
// Entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - FrameTimestamp: presentation time of a single decoded frame
package ffprobe
