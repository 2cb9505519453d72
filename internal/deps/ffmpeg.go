package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

const (
	defaultFFmpeg  = "ffmpeg"
	defaultFFprobe = "ffprobe"
)

// ResolveFFmpegPath returns the absolute path of the ffmpeg binary that
// would run for the configured value. An empty value falls back to "ffmpeg"
// on PATH. The returned error is exec.ErrNotFound-compatible.
func ResolveFFmpegPath(configured string) (string, error) {
	return resolve(configured, defaultFFmpeg)
}

// ResolveFFprobePath mirrors ResolveFFmpegPath for ffprobe.
func ResolveFFprobePath(configured string) (string, error) {
	return resolve(configured, defaultFFprobe)
}

func resolve(configured, fallback string) (string, error) {
	name := strings.TrimSpace(configured)
	if name == "" {
		name = fallback
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", name, err)
	}
	return path, nil
}

// MediaRequirements lists the external binaries the render pipeline needs.
func MediaRequirements(ffmpegBinary, ffprobeBinary string) []Requirement {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = defaultFFmpeg
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = defaultFFprobe
	}
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpegBinary,
			Description: "Decodes, encodes and remuxes video",
		},
		{
			Name:        "FFprobe",
			Command:     ffprobeBinary,
			Description: "Reads frame rate, frame count and timestamps",
		},
	}
}
