package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// OutputPaths names the intermediate and final files derived from the
// configured output video.
type OutputPaths struct {
	FullVideoOnly   string
	SampleVideoOnly string
	SampleFinal     string
}

// DerivedPaths creates the output directory and returns the intermediate
// filenames that sit next to the output video.
func (c *Config) DerivedPaths() (OutputPaths, error) {
	output := c.Paths.OutputVideo
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return OutputPaths{}, fmt.Errorf("create output directory: %w", err)
	}
	return OutputPaths{
		FullVideoOnly:   siblingWithSuffix(output, "_video_only"),
		SampleVideoOnly: siblingWithSuffix(output, "_sample_video"),
		SampleFinal:     siblingWithSuffix(output, "_sample"),
	}, nil
}
