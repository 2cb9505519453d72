// Package frames moves raw RGBA frames between ffmpeg subprocesses and Go
// images.
//
// A Decoder runs ffmpeg with rawvideo output on stdout and yields one
// *image.RGBA per call to Next. An Encoder runs ffmpeg reading rawvideo on
// stdin and writes a video-only container. RawReader and RawWriter own the
// byte framing and work on any io.Reader or io.Writer.
package frames
