package preview

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"

	"vidblur/internal/blur"
	"vidblur/internal/config"
	"vidblur/internal/logging"
	"vidblur/internal/media/ffprobe"
	"vidblur/internal/media/frames"
	"vidblur/internal/services"
)

const helpText = "Enter a strength (0-%d), + or - to step, an empty line or ok to start, q to cancel.\n"

type (
	probeFunc func(ctx context.Context, path string) (ffprobe.VideoInfo, error)
	grabFunc  func(ctx context.Context, path string, index int, info ffprobe.VideoInfo) (*image.RGBA, error)
)

// Picker chooses a blur kernel interactively.
type Picker struct {
	in          io.Reader
	out         io.Writer
	logger      *slog.Logger
	previewPath string
	maxWidth    int
	maxStrength int
	probe       probeFunc
	grab        grabFunc
	intN        func(n int) int
}

// Option customises a Picker.
type Option func(*Picker)

// WithFrameSource overrides how metadata and the preview frame are read.
func WithFrameSource(
	probe func(ctx context.Context, path string) (ffprobe.VideoInfo, error),
	grab func(ctx context.Context, path string, index int, info ffprobe.VideoInfo) (*image.RGBA, error),
) Option {
	return func(p *Picker) {
		if probe != nil {
			p.probe = probe
		}
		if grab != nil {
			p.grab = grab
		}
	}
}

// WithRandom overrides frame index selection.
func WithRandom(intN func(n int) int) Option {
	return func(p *Picker) {
		if intN != nil {
			p.intN = intN
		}
	}
}

// NewPicker builds a Picker reading commands from in and writing prompts to out.
func NewPicker(cfg *config.Config, in io.Reader, out io.Writer, logger *slog.Logger, opts ...Option) *Picker {
	p := &Picker{
		in:          in,
		out:         out,
		logger:      logging.NewComponentLogger(logger, "preview"),
		previewPath: cfg.Paths.PreviewPath,
		maxWidth:    cfg.Preview.MaxWidth,
		maxStrength: cfg.Processing.MaxStrength,
		intN:        rand.IntN,
	}
	p.probe = func(ctx context.Context, path string) (ffprobe.VideoInfo, error) {
		result, err := ffprobe.Inspect(ctx, cfg.FFprobeBinary(), path)
		if err != nil {
			return ffprobe.VideoInfo{}, err
		}
		return result.Video()
	}
	p.grab = func(ctx context.Context, path string, index int, info ffprobe.VideoInfo) (*image.RGBA, error) {
		return frames.ExtractFrame(ctx, frames.DecoderOptions{
			Binary: cfg.FFmpegBinary(),
			Path:   path,
			Width:  info.Width,
			Height: info.Height,
		}, index, info.FPS)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SelectKernel shows a random frame of source and returns the kernel size for
// the confirmed strength.
func (p *Picker) SelectKernel(ctx context.Context, source string) (int, error) {
	info, err := p.probe(ctx, source)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "preview", "probe", "error reading video file", err)
	}
	if info.FrameCount <= 0 {
		return 0, services.Wrap(services.ErrValidation, "preview", "probe", "error reading video file", nil)
	}
	index := p.intN(info.FrameCount)
	frame, err := p.grab(ctx, source, index, info)
	if err != nil || frame == nil {
		return 0, services.Wrap(services.ErrExternalTool, "preview", "read frame", "error reading video file", err)
	}
	p.logger.Debug("preview frame selected", logging.Int("frame", index), logging.Int("total_frames", info.FrameCount))

	strength := 0
	if err := p.render(frame, strength); err != nil {
		return 0, err
	}
	fmt.Fprintf(p.out, helpText, p.maxStrength)

	// bufio.NewReader reuses p.in when it is already a *bufio.Reader, so a
	// confirmation prompt sharing the same terminal sees the next line.
	reader := bufio.NewReader(p.in)
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fmt.Fprintf(p.out, "Strength [%d]: ", strength)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("read strength: %w", err)
		}
		if err != nil && line == "" {
			return 0, services.Wrap(services.ErrCancelled, "preview", "select strength", "Cancelled.", nil)
		}
		next, done, err := p.interpret(line, strength)
		if err != nil {
			return 0, err
		}
		if done {
			return blur.KernelSize(strength), nil
		}
		if next == strength {
			continue
		}
		strength = next
		if err := p.render(frame, strength); err != nil {
			return 0, err
		}
	}
}

// interpret applies one input line to the current strength.
func (p *Picker) interpret(line string, strength int) (int, bool, error) {
	switch cmd := strings.ToLower(strings.TrimSpace(line)); cmd {
	case "", "ok":
		return strength, true, nil
	case "q", "quit", "esc":
		return strength, false, services.Wrap(services.ErrCancelled, "preview", "select strength", "Cancelled.", nil)
	case "+":
		return blur.ClampStrength(strength+1, p.maxStrength), false, nil
	case "-":
		return blur.ClampStrength(strength-1, p.maxStrength), false, nil
	default:
		value, err := strconv.Atoi(cmd)
		if err != nil || value < 0 || value > p.maxStrength {
			fmt.Fprintf(p.out, helpText, p.maxStrength)
			return strength, false, nil
		}
		return value, false, nil
	}
}

func (p *Picker) render(frame *image.RGBA, strength int) error {
	kernel := blur.KernelSize(strength)
	img := blur.Preview(frame, kernel, p.maxWidth)
	if err := blur.SavePNG(p.previewPath, img); err != nil {
		return services.Wrap(services.ErrConfiguration, "preview", "save", "write preview image", err)
	}
	fmt.Fprintf(p.out, "Preview (strength %d, kernel %d): %s\n", strength, kernel, p.previewPath)
	return nil
}
