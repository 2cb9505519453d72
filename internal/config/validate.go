package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputVideo == "" {
		return errors.New("paths.output_video must be set")
	}
	if c.Paths.SourceVideo != "" && c.Paths.SourceVideo == c.Paths.OutputVideo {
		return errors.New("paths.output_video must differ from paths.source_video")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	if err := ensurePositive(
		positiveField{"processing.sample_frames", c.Processing.SampleFrames},
		positiveField{"processing.queue_depth", c.Processing.QueueDepth},
		positiveField{"processing.max_strength", c.Processing.MaxStrength},
		positiveField{"preview.max_width", c.Preview.MaxWidth},
	); err != nil {
		return err
	}
	if c.Processing.Workers < 0 {
		return errors.New("processing.workers must be >= 0")
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if c.CFR.Enabled && c.CFR.FPS <= 0 {
		return errors.New("cfr.fps must be positive when cfr.enabled is true")
	}
	if c.CFR.CRF < 0 || c.CFR.CRF > 51 {
		return errors.New("cfr.crf must be between 0 and 51")
	}
	if c.Encoder.CRF < 0 || c.Encoder.CRF > 51 {
		return errors.New("encoder.crf must be between 0 and 51")
	}
	if c.Audio.OffsetSeconds < 0 {
		return errors.New("audio.offset_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}

type positiveField struct {
	key   string
	value int
}

// ensurePositive reports the first non-positive field in argument order.
func ensurePositive(fields ...positiveField) error {
	for _, f := range fields {
		if f.value <= 0 {
			return fmt.Errorf("%s must be positive", f.key)
		}
	}
	return nil
}
