package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"vidblur/internal/config"
	"vidblur/internal/logging"
	"vidblur/internal/media/ffprobe"
	"vidblur/internal/media/frames"
	"vidblur/internal/services"
)

// Request describes one render.
type Request struct {
	Input       string
	Output      string
	Kernel      int
	MaxFrames   int
	Description string
}

// ProcessedVideo describes a video-only file produced by Process.
type ProcessedVideo struct {
	Path       string
	FrameCount int
	FPS        float64
	Width      int
	Height     int
}

// Duration returns FrameCount/FPS. ok is false when the frame rate is unknown.
func (v ProcessedVideo) Duration() (float64, bool) {
	if v.FPS <= 0 {
		return 0, false
	}
	return float64(v.FrameCount) / v.FPS, true
}

// FrameSource is a decoder that must be closed.
type FrameSource interface {
	Source
	Close() error
}

// FrameSink is an encoder that must be closed to finalise output.
type FrameSink interface {
	Sink
	Close() error
}

type (
	probeFunc   func(ctx context.Context, binary, path string) (ffprobe.Result, error)
	decoderFunc func(ctx context.Context, opts frames.DecoderOptions) (FrameSource, error)
	encoderFunc func(ctx context.Context, opts frames.EncoderOptions) (FrameSink, error)
)

// Processor renders blurred video-only files with ffmpeg.
type Processor struct {
	cfg      *config.Config
	logger   *slog.Logger
	progress io.Writer
	probe    probeFunc
	decoder  decoderFunc
	encoder  encoderFunc
}

// Option customises a Processor.
type Option func(*Processor)

// WithProgressWriter renders a terminal progress bar to w instead of
// sampled log lines.
func WithProgressWriter(w io.Writer) Option {
	return func(p *Processor) { p.progress = w }
}

// WithProbe overrides metadata inspection.
func WithProbe(fn func(ctx context.Context, binary, path string) (ffprobe.Result, error)) Option {
	return func(p *Processor) {
		if fn != nil {
			p.probe = fn
		}
	}
}

// WithCodecs overrides the frame decoder and encoder factories.
func WithCodecs(
	decoder func(ctx context.Context, opts frames.DecoderOptions) (FrameSource, error),
	encoder func(ctx context.Context, opts frames.EncoderOptions) (FrameSink, error),
) Option {
	return func(p *Processor) {
		if decoder != nil {
			p.decoder = decoder
		}
		if encoder != nil {
			p.encoder = encoder
		}
	}
}

// NewProcessor constructs a Processor backed by ffprobe and ffmpeg.
func NewProcessor(cfg *config.Config, logger *slog.Logger, opts ...Option) *Processor {
	p := &Processor{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "render"),
		probe:  ffprobe.Inspect,
		decoder: func(ctx context.Context, opts frames.DecoderOptions) (FrameSource, error) {
			return frames.NewDecoder(ctx, opts)
		},
		encoder: func(ctx context.Context, opts frames.EncoderOptions) (FrameSink, error) {
			return frames.NewEncoder(ctx, opts)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe returns the video metadata of path.
func (p *Processor) Probe(ctx context.Context, path string) (ffprobe.VideoInfo, error) {
	result, err := p.probe(ctx, p.cfg.FFprobeBinary(), path)
	if err != nil {
		return ffprobe.VideoInfo{}, services.Wrap(services.ErrExternalTool, "render", "probe", "unable to read video metadata", err)
	}
	info, err := result.Video()
	if err != nil {
		return ffprobe.VideoInfo{}, services.Wrap(services.ErrValidation, "render", "probe", "unable to read video metadata", err)
	}
	if info.FPS <= 0 || info.Width <= 0 || info.Height <= 0 {
		return ffprobe.VideoInfo{}, services.Wrap(services.ErrValidation, "render", "probe", "unable to read video metadata",
			fmt.Errorf("fps=%v size=%dx%d", info.FPS, info.Width, info.Height))
	}
	return info, nil
}

// Process blurs req.Input into req.Output and returns what was written.
func (p *Processor) Process(ctx context.Context, req Request) (ProcessedVideo, error) {
	if strings.TrimSpace(req.Input) == "" || strings.TrimSpace(req.Output) == "" {
		return ProcessedVideo{}, services.Wrap(services.ErrValidation, "render", "process", "input and output paths are required", nil)
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Render"
	}
	ctx = services.WithStage(ctx, description)
	logger := logging.WithContext(ctx, p.logger)

	info, err := p.Probe(ctx, req.Input)
	if err != nil {
		return ProcessedVideo{}, err
	}

	total := info.FrameCount
	if req.MaxFrames > 0 && (total <= 0 || req.MaxFrames < total) {
		total = req.MaxFrames
	}

	if dir := filepath.Dir(req.Output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ProcessedVideo{}, services.Wrap(services.ErrConfiguration, "render", "prepare output", "create output directory", err)
		}
	}

	logger.Info("render started",
		logging.String("input", req.Input),
		logging.String("output", req.Output),
		logging.Int("kernel", req.Kernel),
		logging.Int("frames", total),
		logging.Float64("fps", info.FPS),
	)

	src, err := p.decoder(ctx, frames.DecoderOptions{
		Binary:    p.cfg.FFmpegBinary(),
		Path:      req.Input,
		Width:     info.Width,
		Height:    info.Height,
		MaxFrames: req.MaxFrames,
	})
	if err != nil {
		return ProcessedVideo{}, services.Wrap(services.ErrExternalTool, "render", "open decoder", "start ffmpeg decoder", err)
	}
	sink, err := p.encoder(ctx, frames.EncoderOptions{
		Binary: p.cfg.FFmpegBinary(),
		Path:   req.Output,
		Width:  info.Width,
		Height: info.Height,
		FPS:    info.FPS,
		Codec:  p.cfg.Encoder.Codec,
		Preset: p.cfg.Encoder.Preset,
		CRF:    p.cfg.Encoder.CRF,
		PixFmt: p.cfg.Encoder.PixFmt,
	})
	if err != nil {
		_ = src.Close()
		return ProcessedVideo{}, services.Wrap(services.ErrExternalTool, "render", "open encoder", "start ffmpeg encoder", err)
	}

	reporter := newProgressReporter(p.progress, logger, description, total)
	written, runErr := Run(ctx, src, sink, req.Kernel, Options{
		Workers:    p.cfg.Processing.Workers,
		QueueDepth: p.cfg.Processing.QueueDepth,
		MaxFrames:  req.MaxFrames,
		Progress:   reporter.Update,
	})
	reporter.Finish()

	closeErr := errors.Join(src.Close(), sink.Close())
	if runErr != nil {
		if services.IsCancellation(runErr) {
			return ProcessedVideo{}, services.Wrap(services.ErrCancelled, "render", "process", description+" cancelled", runErr)
		}
		return ProcessedVideo{}, services.Wrap(services.ErrExternalTool, "render", "process", description+" failed", errors.Join(runErr, closeErr))
	}
	if closeErr != nil {
		return ProcessedVideo{}, services.Wrap(services.ErrExternalTool, "render", "finalise", description+" failed", closeErr)
	}

	logger.Info(fmt.Sprintf("%s complete (%d frames)", description, written),
		logging.Int("frames", written),
		logging.String(logging.FieldEventType, "render_complete"),
	)
	return ProcessedVideo{
		Path:       req.Output,
		FrameCount: written,
		FPS:        info.FPS,
		Width:      info.Width,
		Height:     info.Height,
	}, nil
}
