package deps

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := writeStub(t, binDir, "present")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("expected blank command to be reported as not configured, got %#v", results[2])
	}
}

func TestResolveFFmpegPathUsesPATH(t *testing.T) {
	binDir := t.TempDir()
	ffmpeg := writeStub(t, binDir, "ffmpeg")
	t.Setenv("PATH", binDir)

	got, err := ResolveFFmpegPath("")
	if err != nil {
		t.Fatalf("ResolveFFmpegPath returned error: %v", err)
	}
	if got != ffmpeg {
		t.Fatalf("expected %q, got %q", ffmpeg, got)
	}
}

func TestResolveFFprobePathExplicit(t *testing.T) {
	binDir := t.TempDir()
	probe := writeStub(t, binDir, "custom-ffprobe")
	t.Setenv("PATH", "")

	got, err := ResolveFFprobePath(probe)
	if err != nil {
		t.Fatalf("ResolveFFprobePath returned error: %v", err)
	}
	if got != probe {
		t.Fatalf("expected %q, got %q", probe, got)
	}
}

func TestResolveFFmpegPathMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := ResolveFFmpegPath("")
	if err == nil {
		t.Fatal("expected error when ffmpeg is absent")
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Fatalf("expected exec.ErrNotFound, got %v", err)
	}
}

func TestMediaRequirementsDefaults(t *testing.T) {
	reqs := MediaRequirements("", "/opt/ffprobe")
	if len(reqs) != 2 {
		t.Fatalf("expected two requirements, got %d", len(reqs))
	}
	if reqs[0].Command != "ffmpeg" {
		t.Fatalf("expected ffmpeg default, got %q", reqs[0].Command)
	}
	if reqs[1].Command != "/opt/ffprobe" {
		t.Fatalf("expected configured ffprobe, got %q", reqs[1].Command)
	}
}
