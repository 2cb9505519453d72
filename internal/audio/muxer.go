package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"vidblur/internal/deps"
	"vidblur/internal/fileutil"
	"vidblur/internal/logging"
	"vidblur/internal/services"
)

// MuxCommand describes one remux.
type MuxCommand struct {
	Processed string
	Source    string
	Output    string
	// Duration limits the audio read from Source; nil reads to the end.
	Duration    *float64
	AudioOffset float64
}

// Result reports the outcome of Mux.
type Result struct {
	OutputPath string
	AudioMuxed bool
}

// BuildMuxArgs returns the ffmpeg arguments for cmd, output path last.
func BuildMuxArgs(cmd MuxCommand) []string {
	args := []string{
		"-y",
		"-i", cmd.Processed,
		"-ss", fmt.Sprintf("%.6f", cmd.AudioOffset),
		"-i", cmd.Source,
	}
	if cmd.Duration != nil {
		args = append(args, "-t", fmt.Sprintf("%.6f", *cmd.Duration))
	}
	return append(args,
		"-map", "0:v:0",
		"-map", "1:a?",
		"-c:v", "copy",
		"-c:a", "copy",
		"-shortest",
		"-fflags", "+genpts",
		"-avoid_negative_ts", "make_zero",
		cmd.Output,
	)
}

type commandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

// Muxer joins processed video with source audio using ffmpeg.
type Muxer struct {
	logger  *slog.Logger
	binary  string
	resolve func(string) (string, error)
	run     commandRunner
}

// NewMuxer constructs a muxer for the configured ffmpeg binary.
func NewMuxer(ffmpegBinary string, logger *slog.Logger) *Muxer {
	return &Muxer{
		logger:  logging.NewComponentLogger(logger, "mux"),
		binary:  ffmpegBinary,
		resolve: deps.ResolveFFmpegPath,
		run:     defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (m *Muxer) WithCommandRunner(r commandRunner) {
	if m != nil && r != nil {
		m.run = r
	}
}

// Mux copies the first video stream of processed and any audio of source
// into output. The processed intermediate is consumed either way.
func (m *Muxer) Mux(ctx context.Context, cmd MuxCommand) (Result, error) {
	if m == nil {
		return Result{}, errors.New("muxer not initialized")
	}
	logger := logging.WithContext(ctx, m.logger)

	if _, err := os.Stat(cmd.Processed); err != nil {
		return Result{}, services.Wrap(services.ErrNotFound, "mux", "stat processed", "processed video not found at "+cmd.Processed, err)
	}

	ffmpeg, err := m.resolve(m.binary)
	if err != nil {
		logging.WarnWithContext(logger, "ffmpeg not found; output will not contain audio", "audio_mux_skipped",
			logging.String("output", cmd.Output),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install ffmpeg or set ffmpeg.ffmpeg_binary"),
			logging.String(logging.FieldImpact, "output is video-only"),
		)
		if err := fileutil.MoveFile(cmd.Processed, cmd.Output); err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, "mux", "move video-only", "could not place output", err)
		}
		return Result{OutputPath: cmd.Output}, nil
	}

	args := BuildMuxArgs(cmd)
	logger.Debug("executing ffmpeg mux",
		logging.String("ffmpeg", ffmpeg),
		logging.String("args", strings.Join(args, " ")),
	)

	stdout, stderr, runErr := m.run(ctx, ffmpeg, args...)
	if runErr != nil {
		moveErr := fileutil.MoveFile(cmd.Processed, cmd.Output)
		detail := fmt.Sprintf("ffmpeg failed to mux audio:\nSTDOUT:\n%s\nSTDERR:\n%s", stdout, stderr)
		return Result{OutputPath: cmd.Output}, services.Wrap(services.ErrExternalTool, "mux", "ffmpeg", detail, errors.Join(runErr, moveErr))
	}

	if err := os.Remove(cmd.Processed); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.WarnWithContext(logger, "failed to remove video-only intermediate", "intermediate_cleanup_failed",
			logging.String("path", cmd.Processed),
			logging.Error(err),
			logging.String(logging.FieldImpact, "intermediate file remains on disk"),
		)
	}

	logger.Info("audio muxed",
		logging.String(logging.FieldEventType, "audio_mux_complete"),
		logging.String("output", cmd.Output),
	)
	return Result{OutputPath: cmd.Output, AudioMuxed: true}, nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
