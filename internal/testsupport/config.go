package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"vidblur/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceVideo = filepath.Join(base, "media", "clip.mp4")
	cfgVal.Paths.CFRVideo = filepath.Join(base, "media", "clip_cfr.mp4")
	cfgVal.Paths.OutputVideo = filepath.Join(base, "results", "blurred_output.mp4")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.PreviewPath = filepath.Join(base, "state", "preview.png")
	cfgVal.Processing.Workers = 2
	cfgVal.Processing.QueueDepth = 4

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSampleFrames overrides the sample length on the test config.
func WithSampleFrames(frames int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Processing.SampleFrames = frames
	}
}

// WithSourceFile creates a placeholder source video and points the config at it.
func WithSourceFile(size int64) ConfigOption {
	return func(b *configBuilder) {
		WriteFile(b.t, b.cfg.Paths.SourceVideo, size)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0")
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
