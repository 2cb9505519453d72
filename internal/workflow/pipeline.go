package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"vidblur/internal/audio"
	"vidblur/internal/config"
	"vidblur/internal/history"
	"vidblur/internal/logging"
	"vidblur/internal/render"
	"vidblur/internal/services"
)

// StrengthSelector picks the blur kernel for a source video.
type StrengthSelector interface {
	SelectKernel(ctx context.Context, source string) (int, error)
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Renderer produces a blurred video-only file.
type Renderer interface {
	Process(ctx context.Context, req render.Request) (render.ProcessedVideo, error)
}

// AudioMuxer joins a video-only file with the source audio.
type AudioMuxer interface {
	Mux(ctx context.Context, cmd audio.MuxCommand) (audio.Result, error)
}

// HistoryRecorder persists finished renders.
type HistoryRecorder interface {
	Record(ctx context.Context, r history.Render) (history.Render, error)
}

// Dependencies bundles the collaborators a Pipeline drives.
type Dependencies struct {
	Selector  StrengthSelector
	Confirmer Confirmer
	Renderer  Renderer
	Muxer     AudioMuxer
	// History is optional.
	History HistoryRecorder
	// Out receives operator-facing progress lines.
	Out io.Writer
}

// Options controls a single run.
type Options struct {
	// Source overrides cfg.Paths.SourceVideo, e.g. with the CFR copy.
	Source string
	// Kernel skips the selector when positive.
	Kernel     int
	SkipSample bool
	AssumeYes  bool
}

// StageResult describes one rendered and muxed output.
type StageResult struct {
	Video      render.ProcessedVideo
	Output     string
	AudioMuxed bool
}

// Outcome summarises a run.
type Outcome struct {
	RunID        string
	Kernel       int
	Sample       *StageResult
	Full         *StageResult
	FullRendered bool
}

// ConfirmPrompt is shown before rendering the full video.
const ConfirmPrompt = "Type YES to process the entire video: "

// ErrLocked is returned when another run holds the lock file.
var ErrLocked = errors.New("another vidblur run is in progress")

// Pipeline sequences kernel selection, sample, confirmation and full render.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
	deps   Dependencies
	newID  func() string
	now    func() time.Time
}

// New validates the dependencies and constructs a Pipeline.
func New(cfg *config.Config, logger *slog.Logger, deps Dependencies) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("workflow: config is required")
	}
	if deps.Renderer == nil || deps.Muxer == nil {
		return nil, errors.New("workflow: renderer and muxer are required")
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		deps:   deps,
		newID:  uuid.NewString,
		now:    time.Now,
	}, nil
}

// Run executes the pipeline. A declined confirmation is not an error; the
// outcome reports FullRendered=false.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Outcome, error) {
	source := strings.TrimSpace(opts.Source)
	if source == "" {
		source = p.cfg.Paths.SourceVideo
	}
	if source == "" {
		return Outcome{}, services.Wrap(services.ErrConfiguration, "pipeline", "resolve source", "no source video configured", nil)
	}

	if err := p.cfg.EnsureDirectories(); err != nil {
		return Outcome{}, services.Wrap(services.ErrConfiguration, "pipeline", "prepare", "create state directories", err)
	}
	lock := flock.New(p.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return Outcome{}, services.Wrap(services.ErrConfiguration, "pipeline", "lock", "acquire run lock", err)
	}
	if !locked {
		return Outcome{}, services.Wrap(services.ErrValidation, "pipeline", "lock", p.cfg.LockPath(), ErrLocked)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	outcome := Outcome{RunID: p.newID()}
	ctx = services.WithRunID(ctx, outcome.RunID)
	logger := logging.WithContext(ctx, p.logger)

	paths, err := p.cfg.DerivedPaths()
	if err != nil {
		return outcome, services.Wrap(services.ErrConfiguration, "pipeline", "derive paths", "create output directory", err)
	}

	kernel, err := p.selectKernel(ctx, source, opts.Kernel)
	if err != nil {
		return outcome, err
	}
	outcome.Kernel = kernel
	p.say("Selected Blur Kernel Size: %d", kernel)
	logger.Info("blur kernel selected", logging.Int("kernel", kernel), logging.String("source", source))

	if !opts.SkipSample {
		p.say("Creating sample (%d frames) ...", p.cfg.Processing.SampleFrames)
		sample, err := p.renderStage(ctx, stagePlan{
			kind:        history.KindSample,
			description: "Sample",
			source:      source,
			videoOnly:   paths.SampleVideoOnly,
			output:      paths.SampleFinal,
			kernel:      kernel,
			maxFrames:   p.cfg.Processing.SampleFrames,
		})
		if err != nil {
			return outcome, err
		}
		outcome.Sample = &sample
		p.say("Sample saved to %s", paths.SampleFinal)
	}

	proceed, err := p.confirm(ctx, opts)
	if err != nil {
		return outcome, err
	}
	if !proceed {
		p.say("Aborted full processing.")
		logger.Info("full render declined", logging.String(logging.FieldEventType, "full_render_declined"))
		return outcome, nil
	}

	full, err := p.renderStage(ctx, stagePlan{
		kind:        history.KindFull,
		description: "Full Video",
		source:      source,
		videoOnly:   paths.FullVideoOnly,
		output:      p.cfg.Paths.OutputVideo,
		kernel:      kernel,
	})
	if err != nil {
		return outcome, err
	}
	outcome.Full = &full
	outcome.FullRendered = true
	p.say("Full output saved to %s", p.cfg.Paths.OutputVideo)
	return outcome, nil
}

func (p *Pipeline) selectKernel(ctx context.Context, source string, preset int) (int, error) {
	if preset > 0 {
		return preset, nil
	}
	if p.deps.Selector == nil {
		return 0, services.Wrap(services.ErrConfiguration, "pipeline", "select kernel", "no strength selector configured", nil)
	}
	return p.deps.Selector.SelectKernel(ctx, source)
}

// confirm treats a skipped sample as implicit confirmation since there is
// nothing to review.
func (p *Pipeline) confirm(ctx context.Context, opts Options) (bool, error) {
	if opts.AssumeYes || opts.SkipSample {
		return true, nil
	}
	if p.deps.Confirmer == nil {
		return false, nil
	}
	return p.deps.Confirmer.Confirm(ctx, ConfirmPrompt)
}

func (p *Pipeline) say(format string, args ...any) {
	fmt.Fprintf(p.deps.Out, format+"\n", args...)
}
