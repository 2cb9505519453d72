// Package transcode wraps the one-shot ffmpeg conversions: constant frame
// rate normalisation of the source and trimming short test clips.
package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"vidblur/internal/logging"
	"vidblur/internal/services"
)

// CFROptions configures a constant frame rate conversion.
type CFROptions struct {
	FPS    float64
	Preset string
	CRF    int
}

// CFRArgs builds the ffmpeg arguments that re-encode src at a constant fps.
func CFRArgs(src, dst string, opts CFROptions) []string {
	preset := strings.TrimSpace(opts.Preset)
	if preset == "" {
		preset = "fast"
	}
	return []string{
		"-y", "-i", src,
		"-vsync", "cfr",
		"-r", strconv.FormatFloat(opts.FPS, 'f', -1, 64),
		"-c:v", "libx264", "-preset", preset, "-crf", strconv.Itoa(opts.CRF),
		"-c:a", "copy",
		dst,
	}
}

// TrimArgs builds the ffmpeg arguments that stream-copy the first seconds of src.
func TrimArgs(src, dst string, seconds float64) []string {
	return []string{
		"-y", "-i", src,
		"-t", strconv.FormatFloat(seconds, 'f', -1, 64),
		"-c:v", "copy",
		"-c:a", "copy",
		dst,
	}
}

type commandRunner func(ctx context.Context, name string, args ...string) error

// Transcoder runs conversions with the configured ffmpeg binary.
type Transcoder struct {
	binary string
	logger *slog.Logger
	run    commandRunner
}

// New constructs a Transcoder.
func New(ffmpegBinary string, logger *slog.Logger) *Transcoder {
	binary := strings.TrimSpace(ffmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Transcoder{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "transcode"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (t *Transcoder) WithCommandRunner(r commandRunner) {
	if t != nil && r != nil {
		t.run = r
	}
}

// EnsureCFR converts src into dst at a constant frame rate unless dst
// already exists. It reports whether a conversion ran.
func (t *Transcoder) EnsureCFR(ctx context.Context, src, dst string, opts CFROptions) (bool, error) {
	if opts.FPS <= 0 {
		return false, services.Wrap(services.ErrValidation, "cfr", "validate", fmt.Sprintf("fps must be positive (got %v)", opts.FPS), nil)
	}
	if _, err := os.Stat(dst); err == nil {
		t.logger.Info("CFR video already exists", logging.String("path", dst))
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, services.Wrap(services.ErrConfiguration, "cfr", "stat destination", dst, err)
	}
	if _, err := os.Stat(src); err != nil {
		return false, services.Wrap(services.ErrNotFound, "cfr", "stat source", "source video not found at "+src, err)
	}
	if err := ensureParent(dst); err != nil {
		return false, err
	}

	t.logger.Info(fmt.Sprintf("Converting %s to CFR at %s FPS", src, strconv.FormatFloat(opts.FPS, 'f', -1, 64)),
		logging.String(logging.FieldEventType, "cfr_started"),
	)
	if err := t.run(ctx, t.binary, CFRArgs(src, dst, opts)...); err != nil {
		_ = os.Remove(dst)
		return false, services.Wrap(services.ErrExternalTool, "cfr", "ffmpeg", "FFmpeg CFR conversion failed", err)
	}
	t.logger.Info("CFR video created", logging.String("path", dst), logging.String(logging.FieldEventType, "cfr_complete"))
	return true, nil
}

// Trim writes the first seconds of src to dst without re-encoding.
func (t *Transcoder) Trim(ctx context.Context, src, dst string, seconds float64) error {
	if seconds <= 0 {
		return services.Wrap(services.ErrValidation, "trim", "validate", fmt.Sprintf("seconds must be positive (got %v)", seconds), nil)
	}
	if _, err := os.Stat(src); err != nil {
		return services.Wrap(services.ErrNotFound, "trim", "stat source", "source video not found at "+src, err)
	}
	if err := ensureParent(dst); err != nil {
		return err
	}
	if err := t.run(ctx, t.binary, TrimArgs(src, dst, seconds)...); err != nil {
		return services.Wrap(services.ErrExternalTool, "trim", "ffmpeg", "Error during FFmpeg processing", err)
	}
	t.logger.Info("trimmed clip created",
		logging.String("path", dst),
		logging.Float64("seconds", seconds),
		logging.String(logging.FieldEventType, "trim_complete"),
	)
	return nil
}

func ensureParent(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrConfiguration, "transcode", "prepare output", "create output directory", err)
		}
	}
	return nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
