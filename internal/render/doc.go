// Package render turns a source video into a blurred video-only file.
//
// Run is the ordered producer/consumer core: a reader goroutine pulls frames
// from a Source into a bounded queue, a worker pool blurs them, and a single
// writer drains the queue in source order into a Sink. Processor wraps Run
// with ffprobe metadata, ffmpeg decode/encode subprocesses and progress
// reporting.
package render
