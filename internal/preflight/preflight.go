package preflight

import (
	"path/filepath"
	"strings"

	"vidblur/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for the given config. The source
// check is skipped when no source is configured yet.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if strings.TrimSpace(cfg.Paths.SourceVideo) != "" {
		results = append(results, CheckReadableFile("Source video", cfg.Paths.SourceVideo))
	}
	if output := strings.TrimSpace(cfg.Paths.OutputVideo); output != "" {
		results = append(results, CheckCreatableDirectory("Output directory", filepath.Dir(output)))
	}
	results = append(results, CheckCreatableDirectory("State directory", cfg.Paths.StateDir))
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
