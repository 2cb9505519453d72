package frames

import (
	"fmt"
	"strconv"
	"strings"
)

// DecoderOptions configures a Decoder.
type DecoderOptions struct {
	Binary       string
	Path         string
	Width        int
	Height       int
	StartSeconds float64
	MaxFrames    int
}

// EncoderOptions configures an Encoder.
type EncoderOptions struct {
	Binary string
	Path   string
	Width  int
	Height int
	FPS    float64
	Codec  string
	Preset string
	CRF    int
	PixFmt string
}

// DecodeArgs builds the ffmpeg arguments that stream rgba frames to stdout.
func DecodeArgs(opts DecoderOptions) []string {
	args := []string{"-v", "error", "-nostdin"}
	if opts.StartSeconds > 0 {
		args = append(args, "-ss", formatSeconds(opts.StartSeconds))
	}
	args = append(args, "-i", opts.Path)
	if opts.MaxFrames > 0 {
		args = append(args, "-frames:v", strconv.Itoa(opts.MaxFrames))
	}
	return append(args, "-an", "-f", "rawvideo", "-pix_fmt", "rgba", "-")
}

// EncodeArgs builds the ffmpeg arguments that read rgba frames from stdin and
// write a video-only file.
func EncodeArgs(opts EncoderOptions) []string {
	codec := strings.TrimSpace(opts.Codec)
	if codec == "" {
		codec = "libx264"
	}
	pixFmt := strings.TrimSpace(opts.PixFmt)
	if pixFmt == "" {
		pixFmt = "yuv420p"
	}
	args := []string{
		"-v", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", formatRate(opts.FPS),
		"-i", "-",
		"-an",
		"-c:v", codec,
	}
	if preset := strings.TrimSpace(opts.Preset); preset != "" {
		args = append(args, "-preset", preset)
	}
	if opts.CRF >= 0 {
		args = append(args, "-crf", strconv.Itoa(opts.CRF))
	}
	return append(args, "-pix_fmt", pixFmt, opts.Path)
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 6, 64)
}

func formatRate(fps float64) string {
	return strconv.FormatFloat(fps, 'f', -1, 64)
}
