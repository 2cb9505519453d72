package preview

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidblur/internal/config"
	"vidblur/internal/media/ffprobe"
	"vidblur/internal/services"
)

type fixture struct {
	picker  *Picker
	out     *bytes.Buffer
	index   *int
	preview string
}

func newFixture(t *testing.T, input string, total int) fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.PreviewPath = filepath.Join(t.TempDir(), "preview.png")
	cfg.Processing.MaxStrength = 10
	cfg.Preview.MaxWidth = 8

	out := &bytes.Buffer{}
	grabbed := -1
	p := NewPicker(&cfg, strings.NewReader(input), out, nil,
		WithFrameSource(
			func(context.Context, string) (ffprobe.VideoInfo, error) {
				return ffprobe.VideoInfo{Width: 16, Height: 8, FPS: 30, FrameCount: total}, nil
			},
			func(_ context.Context, _ string, index int, _ ffprobe.VideoInfo) (*image.RGBA, error) {
				grabbed = index
				img := image.NewRGBA(image.Rect(0, 0, 16, 8))
				img.Set(3, 3, color.RGBA{R: 255, A: 255})
				return img, nil
			},
		),
		WithRandom(func(n int) int { return n - 1 }),
	)
	return fixture{picker: p, out: out, index: &grabbed, preview: cfg.Paths.PreviewPath}
}

func TestSelectKernelConfirmsCurrentStrength(t *testing.T) {
	f := newFixture(t, "4\n+\n+\n-\n\n", 90)
	kernel, err := f.picker.SelectKernel(context.Background(), "in.mp4")
	if err != nil {
		t.Fatalf("SelectKernel returned error: %v", err)
	}
	if kernel != 11 {
		t.Fatalf("expected kernel 11 for strength 5, got %d", kernel)
	}
	if *f.index != 89 {
		t.Fatalf("expected random index within range, got %d", *f.index)
	}
	if _, err := os.Stat(f.preview); err != nil {
		t.Fatalf("expected preview png: %v", err)
	}
	if !strings.Contains(f.out.String(), "Preview (strength 5, kernel 11)") {
		t.Fatalf("expected preview line, got %q", f.out.String())
	}
}

func TestSelectKernelDefaultsToOne(t *testing.T) {
	f := newFixture(t, "ok\n", 10)
	kernel, err := f.picker.SelectKernel(context.Background(), "in.mp4")
	if err != nil {
		t.Fatalf("SelectKernel returned error: %v", err)
	}
	if kernel != 1 {
		t.Fatalf("expected kernel 1, got %d", kernel)
	}
}

func TestSelectKernelClampsAndIgnoresGarbage(t *testing.T) {
	f := newFixture(t, "-\n99\nblurry\n10\n+\n\n", 10)
	kernel, err := f.picker.SelectKernel(context.Background(), "in.mp4")
	if err != nil {
		t.Fatalf("SelectKernel returned error: %v", err)
	}
	if kernel != 21 {
		t.Fatalf("expected kernel 21 at max strength, got %d", kernel)
	}
	if strings.Count(f.out.String(), "Enter a strength") != 3 {
		t.Fatalf("expected help reprinted for invalid input, got %q", f.out.String())
	}
}

func TestSelectKernelCancel(t *testing.T) {
	for _, input := range []string{"q\n", "esc\n", "3\n"} {
		f := newFixture(t, input, 10)
		_, err := f.picker.SelectKernel(context.Background(), "in.mp4")
		if !errors.Is(err, services.ErrCancelled) {
			t.Fatalf("input %q: expected ErrCancelled, got %v", input, err)
		}
	}
}

func TestSelectKernelEmptyVideo(t *testing.T) {
	f := newFixture(t, "\n", 0)
	_, err := f.picker.SelectKernel(context.Background(), "in.mp4")
	if err == nil || !strings.Contains(err.Error(), "error reading video file") {
		t.Fatalf("expected read error, got %v", err)
	}
}
