package render

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"vidblur/internal/logging"
)

// progressReporter receives the running frame count from the writer.
type progressReporter interface {
	Update(written int)
	Finish()
}

func newProgressReporter(w io.Writer, logger *slog.Logger, description string, total int) progressReporter {
	if w != nil {
		return newBarReporter(w, description, total)
	}
	return &logReporter{
		logger:      logger,
		description: description,
		total:       total,
		sampler:     logging.NewProgressSampler(10),
		started:     time.Now(),
	}
}

type barReporter struct {
	bar *progressbar.ProgressBar
}

func newBarReporter(w io.Writer, description string, total int) *barReporter {
	limit := total
	if limit <= 0 {
		limit = -1
	}
	bar := progressbar.NewOptions(limit,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)
	return &barReporter{bar: bar}
}

func (r *barReporter) Update(written int) {
	_ = r.bar.Set(written)
}

func (r *barReporter) Finish() {
	_ = r.bar.Finish()
}

type logReporter struct {
	logger      *slog.Logger
	description string
	total       int
	sampler     *logging.ProgressSampler
	started     time.Time
	written     int
}

func (r *logReporter) Update(written int) {
	r.written = written
	percent := -1.0
	if r.total > 0 {
		percent = float64(written) / float64(r.total) * 100
	}
	if !r.sampler.ShouldLog(percent, r.description) {
		return
	}
	r.logger.Info(progressMessage(r.description, percent, r.eta(written)),
		logging.Int("frames", written),
		logging.Int("total_frames", r.total),
		logging.String(logging.FieldEventType, "render_progress"),
	)
}

func (r *logReporter) Finish() {}

func (r *logReporter) eta(written int) time.Duration {
	if r.total <= 0 || written <= 0 || written >= r.total {
		return 0
	}
	elapsed := time.Since(r.started)
	perFrame := elapsed / time.Duration(written)
	return perFrame * time.Duration(r.total-written)
}

func progressMessage(description string, percent float64, eta time.Duration) string {
	label := strings.TrimSpace(description)
	if label == "" {
		label = "Progress"
	}
	if percent < 0 {
		return label + " in progress"
	}
	base := fmt.Sprintf("%s %.1f%%", label, percent)
	if formatted := formatETA(eta); formatted != "" {
		return fmt.Sprintf("%s (ETA %s)", base, formatted)
	}
	return base
}

func formatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || (hours == 0 && minutes == 0) {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, "")
}
