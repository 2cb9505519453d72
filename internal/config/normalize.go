package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProcessing()
	c.normalizeEncoder()
	c.normalizeFFmpeg()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceVideo, err = expandPath(strings.TrimSpace(c.Paths.SourceVideo)); err != nil {
		return fmt.Errorf("paths.source_video: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputVideo) == "" {
		c.Paths.OutputVideo = defaultOutputVideo
	}
	if c.Paths.OutputVideo, err = expandPath(strings.TrimSpace(c.Paths.OutputVideo)); err != nil {
		return fmt.Errorf("paths.output_video: %w", err)
	}
	if strings.TrimSpace(c.Paths.CFRVideo) == "" && c.Paths.SourceVideo != "" {
		c.Paths.CFRVideo = siblingWithSuffix(c.Paths.SourceVideo, "_cfr")
	}
	if c.Paths.CFRVideo, err = expandPath(strings.TrimSpace(c.Paths.CFRVideo)); err != nil {
		return fmt.Errorf("paths.cfr_video: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.PreviewPath) == "" {
		c.Paths.PreviewPath = filepath.Join(c.Paths.StateDir, "preview.png")
	}
	if c.Paths.PreviewPath, err = expandPath(c.Paths.PreviewPath); err != nil {
		return fmt.Errorf("paths.preview_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeProcessing() {
	if c.Processing.Workers == 0 {
		c.Processing.Workers = runtime.NumCPU()
	}
}

func (c *Config) normalizeEncoder() {
	c.Encoder.Codec = strings.TrimSpace(c.Encoder.Codec)
	if c.Encoder.Codec == "" {
		c.Encoder.Codec = defaultEncoderCodec
	}
	c.Encoder.Preset = strings.TrimSpace(c.Encoder.Preset)
	c.Encoder.PixFmt = strings.TrimSpace(c.Encoder.PixFmt)
	if c.Encoder.PixFmt == "" {
		c.Encoder.PixFmt = defaultEncoderPixFmt
	}
	c.CFR.Preset = strings.TrimSpace(c.CFR.Preset)
	if c.CFR.Preset == "" {
		c.CFR.Preset = defaultCFRPreset
	}
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.FFmpegBinary = strings.TrimSpace(c.FFmpeg.FFmpegBinary)
	if value, ok := os.LookupEnv("VIDBLUR_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.FFmpeg.FFmpegBinary = strings.TrimSpace(value)
	}
	if c.FFmpeg.FFmpegBinary == "" {
		c.FFmpeg.FFmpegBinary = defaultFFmpegBinary
	}
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if value, ok := os.LookupEnv("VIDBLUR_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.FFmpeg.FFprobeBinary = strings.TrimSpace(value)
	}
	if c.FFmpeg.FFprobeBinary == "" {
		c.FFmpeg.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// siblingWithSuffix returns "<dir>/<stem><suffix><ext>" for path.
func siblingWithSuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	return filepath.Join(filepath.Dir(path), stem+suffix+ext)
}
