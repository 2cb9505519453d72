// Package audio remuxes the source audio onto a blurred video-only file with
// an ffmpeg stream copy. When ffmpeg is unavailable or fails, the video-only
// file is still moved to the output path so the render is never lost.
package audio
