package frames

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRawRoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	src.Set(1, 1, color.RGBA{B: 200, A: 255})

	var buf bytes.Buffer
	w, err := NewRawWriter(&buf, 2, 2)
	if err != nil {
		t.Fatalf("NewRawWriter: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := w.Write(src); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if buf.Len() != 2*FrameSize(2, 2) {
		t.Fatalf("expected %d bytes, got %d", 2*FrameSize(2, 2), buf.Len())
	}

	r, err := NewRawReader(&buf, 2, 2)
	if err != nil {
		t.Fatalf("NewRawReader: %v", err)
	}
	for i := 0; i < 2; i++ {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		if !bytes.Equal(got.Pix, src.Pix) {
			t.Fatalf("frame %d pixels differ", i)
		}
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestRawReaderTruncatedFrame(t *testing.T) {
	r, err := NewRawReader(bytes.NewReader(make([]byte, 10)), 2, 2)
	if err != nil {
		t.Fatalf("NewRawReader: %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestRawWriterSubImage(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range base.Pix {
		base.Pix[i] = byte(i)
	}
	sub := base.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)

	var buf bytes.Buffer
	w, _ := NewRawWriter(&buf, 2, 2)
	if err := w.Write(sub); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := append(append([]byte(nil), base.Pix[20:28]...), base.Pix[36:44]...)
	if diff := cmp.Diff(want, buf.Bytes()); diff != "" {
		t.Fatalf("sub-image bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestRawWriterRejectsWrongSize(t *testing.T) {
	w, _ := NewRawWriter(io.Discard, 2, 2)
	if err := w.Write(image.NewRGBA(image.Rect(0, 0, 3, 2))); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if err := w.Write(nil); err == nil {
		t.Fatal("expected nil frame error")
	}
	if _, err := NewRawReader(nil, 0, 2); err == nil {
		t.Fatal("expected invalid dimension error")
	}
}

func TestDecodeArgs(t *testing.T) {
	got := DecodeArgs(DecoderOptions{Path: "in.mp4", StartSeconds: 1.5, MaxFrames: 1})
	want := []string{
		"-v", "error", "-nostdin",
		"-ss", "1.500000",
		"-i", "in.mp4",
		"-frames:v", "1",
		"-an", "-f", "rawvideo", "-pix_fmt", "rgba", "-",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}

	plain := DecodeArgs(DecoderOptions{Path: "in.mp4"})
	if strings.Contains(strings.Join(plain, " "), "-ss") || strings.Contains(strings.Join(plain, " "), "-frames:v") {
		t.Fatalf("unexpected seek or limit in %v", plain)
	}
}

func TestEncodeArgs(t *testing.T) {
	got := EncodeArgs(EncoderOptions{
		Path:   "out_video_only.mp4",
		Width:  640,
		Height: 360,
		FPS:    29.97,
		Codec:  "libx264",
		Preset: "fast",
		CRF:    18,
		PixFmt: "yuv420p",
	})
	want := []string{
		"-v", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", "640x360",
		"-r", "29.97",
		"-i", "-",
		"-an",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"out_video_only.mp4",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestDecoderReadsFramesFromSubprocess(t *testing.T) {
	bin := writeScript(t, "head -c 48 /dev/zero\n")
	dec, err := NewDecoder(context.Background(), DecoderOptions{Binary: bin, Path: "in.mp4", Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	count := 0
	for {
		_, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		count++
	}
	if count != 3 {
		t.Fatalf("expected 3 frames, got %d", count)
	}
	if err := dec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestDecoderReportsToolFailure(t *testing.T) {
	bin := writeScript(t, "echo 'Invalid data found' >&2\nexit 1\n")
	dec, err := NewDecoder(context.Background(), DecoderOptions{Binary: bin, Path: "in.mp4", Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	_, err = dec.Next()
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestEncoderWritesStdinToOutput(t *testing.T) {
	bin := writeScript(t, "for last; do :; done\ncat > \"$last\"\n")
	out := filepath.Join(t.TempDir(), "out.mp4")
	enc, err := NewEncoder(context.Background(), EncoderOptions{Binary: bin, Path: out, Width: 2, Height: 2, FPS: 30, CRF: 18})
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	frame := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range frame.Pix {
		frame.Pix[i] = 7
	}
	for i := 0; i < 4; i++ {
		if err := enc.Write(frame); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if enc.Frames() != 4 {
		t.Fatalf("expected 4 frames, got %d", enc.Frames())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) != 4*FrameSize(2, 2) {
		t.Fatalf("expected %d bytes, got %d", 4*FrameSize(2, 2), len(data))
	}
}

func TestNewEncoderRejectsZeroFPS(t *testing.T) {
	_, err := NewEncoder(context.Background(), EncoderOptions{Path: "out.mp4", Width: 2, Height: 2})
	if err == nil {
		t.Fatal("expected invalid fps error")
	}
}

func TestExtractFrame(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	bin := writeScript(t, "echo \"$@\" > "+argsFile+"\nhead -c 16 /dev/zero\n")
	img, err := ExtractFrame(context.Background(), DecoderOptions{Binary: bin, Path: "in.mp4", Width: 2, Height: 2}, 60, 30)
	if err != nil {
		t.Fatalf("ExtractFrame: %v", err)
	}
	if img.Bounds().Dx() != 2 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	if !strings.Contains(string(recorded), "-ss 2.000000") || !strings.Contains(string(recorded), "-frames:v 1") {
		t.Fatalf("unexpected ffmpeg args %q", recorded)
	}

	empty := writeScript(t, "exit 0\n")
	if _, err := ExtractFrame(context.Background(), DecoderOptions{Binary: empty, Path: "in.mp4", Width: 2, Height: 2}, 0, 30); err == nil {
		t.Fatal("expected error when no frame is produced")
	}
	if _, err := ExtractFrame(context.Background(), DecoderOptions{Path: "in.mp4", Width: 2, Height: 2}, 0, 0); err == nil {
		t.Fatal("expected error for zero fps")
	}
}
