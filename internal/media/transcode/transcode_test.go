package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"vidblur/internal/logging"
	"vidblur/internal/services"
)

func TestCFRArgs(t *testing.T) {
	got := CFRArgs("in.mp4", "in_cfr.mp4", CFROptions{FPS: 30, Preset: "fast", CRF: 18})
	want := []string{
		"-y", "-i", "in.mp4",
		"-vsync", "cfr",
		"-r", "30",
		"-c:v", "libx264", "-preset", "fast", "-crf", "18",
		"-c:a", "copy",
		"in_cfr.mp4",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestTrimArgs(t *testing.T) {
	got := TrimArgs("Tuesday.mp4", "mini.mp4", 600)
	want := []string{"-y", "-i", "Tuesday.mp4", "-t", "600", "-c:v", "copy", "-c:a", "copy", "mini.mp4"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEnsureCFRSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.mp4")
	dst := filepath.Join(dir, "in_cfr.mp4")
	touch(t, src)
	touch(t, dst)

	tr := New("", logging.NewNop())
	tr.WithCommandRunner(func(context.Context, string, ...string) error {
		t.Fatal("ffmpeg should not run when the CFR file exists")
		return nil
	})
	created, err := tr.EnsureCFR(context.Background(), src, dst, CFROptions{FPS: 30})
	if err != nil || created {
		t.Fatalf("expected skip, got created=%v err=%v", created, err)
	}
}

func TestEnsureCFRRunsFFmpeg(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.mp4")
	dst := filepath.Join(dir, "in_cfr.mp4")
	touch(t, src)

	var gotName string
	var gotArgs []string
	tr := New("/opt/ffmpeg", nil)
	tr.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	})
	created, err := tr.EnsureCFR(context.Background(), src, dst, CFROptions{FPS: 24, Preset: "slow", CRF: 20})
	if err != nil || !created {
		t.Fatalf("expected conversion, got created=%v err=%v", created, err)
	}
	if gotName != "/opt/ffmpeg" {
		t.Fatalf("unexpected binary %q", gotName)
	}
	if diff := cmp.Diff(CFRArgs(src, dst, CFROptions{FPS: 24, Preset: "slow", CRF: 20}), gotArgs); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsureCFRFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.mp4")
	touch(t, src)
	tr := New("", nil)
	tr.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 1: Unknown encoder 'libx264'")
	})
	_, err := tr.EnsureCFR(context.Background(), src, filepath.Join(dir, "out.mp4"), CFROptions{FPS: 30})
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "Unknown encoder") {
		t.Fatalf("expected wrapped ffmpeg failure, got %v", err)
	}
}

func TestEnsureCFRValidation(t *testing.T) {
	tr := New("", nil)
	if _, err := tr.EnsureCFR(context.Background(), "a", "b", CFROptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	dir := t.TempDir()
	if _, err := tr.EnsureCFR(context.Background(), filepath.Join(dir, "missing.mp4"), filepath.Join(dir, "out.mp4"), CFROptions{FPS: 30}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestTrim(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.mp4")
	touch(t, src)
	var gotArgs []string
	tr := New("", nil)
	tr.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		gotArgs = args
		return nil
	})
	dst := filepath.Join(dir, "clips", "mini.mp4")
	if err := tr.Trim(context.Background(), src, dst, 12.5); err != nil {
		t.Fatalf("Trim returned error: %v", err)
	}
	if gotArgs[4] != "12.5" || gotArgs[len(gotArgs)-1] != dst {
		t.Fatalf("unexpected args %v", gotArgs)
	}
	if err := tr.Trim(context.Background(), src, dst, 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
