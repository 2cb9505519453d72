package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains source, output, and state locations.
type Paths struct {
	SourceVideo string `toml:"source_video"`
	OutputVideo string `toml:"output_video"`
	CFRVideo    string `toml:"cfr_video"`
	LogDir      string `toml:"log_dir"`
	StateDir    string `toml:"state_dir"`
	PreviewPath string `toml:"preview_path"`
}

// Processing contains frame pipeline settings.
type Processing struct {
	SampleFrames int  `toml:"sample_frames"`
	Workers      int  `toml:"workers"`
	QueueDepth   int  `toml:"queue_depth"`
	MaxStrength  int  `toml:"max_strength"`
	SkipSample   bool `toml:"skip_sample"`
}

// CFR contains constant frame rate conversion settings applied to the source
// before any frame is read.
type CFR struct {
	Enabled bool    `toml:"enabled"`
	FPS     float64 `toml:"fps"`
	Preset  string  `toml:"preset"`
	CRF     int     `toml:"crf"`
}

// Encoder contains settings for the video-only intermediate files.
type Encoder struct {
	Codec  string `toml:"codec"`
	Preset string `toml:"preset"`
	CRF    int    `toml:"crf"`
	PixFmt string `toml:"pix_fmt"`
}

// Audio contains remux settings.
type Audio struct {
	OffsetSeconds float64 `toml:"offset_seconds"`
}

// FFmpeg names the external media binaries.
type FFmpeg struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Preview contains strength picker settings.
type Preview struct {
	MaxWidth int `toml:"max_width"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for vidblur.
//
// Configuration sections by subsystem:
//   - Paths: source, output, CFR intermediate, logs, and run state
//   - Processing: sample size, worker pool, queue depth, strength range
//   - CFR: constant frame rate conversion of the source
//   - Encoder: codec settings for blurred video-only files
//   - Audio: remux offset
//   - FFmpeg: ffmpeg/ffprobe binaries
//   - Preview: strength picker rendering
//   - Logging: log format, level, and retention
type Config struct {
	Paths      Paths      `toml:"paths"`
	Processing Processing `toml:"processing"`
	CFR        CFR        `toml:"cfr"`
	Encoder    Encoder    `toml:"encoder"`
	Audio      Audio      `toml:"audio"`
	FFmpeg     FFmpeg     `toml:"ffmpeg"`
	Preview    Preview    `toml:"preview"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Finalize normalizes and validates the config. Callers that mutate a loaded
// config (for example from CLI flags) call it again before use.
func (c *Config) Finalize() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vidblur.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for decode, encode, and muxing.
func (c *Config) FFmpegBinary() string {
	if c == nil || strings.TrimSpace(c.FFmpeg.FFmpegBinary) == "" {
		return defaultFFmpegBinary
	}
	return c.FFmpeg.FFmpegBinary
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if c == nil || strings.TrimSpace(c.FFmpeg.FFprobeBinary) == "" {
		return defaultFFprobeBinary
	}
	return c.FFmpeg.FFprobeBinary
}

// HistoryPath returns the SQLite database recording finished renders.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the lock file guarding concurrent runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "vidblur.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
