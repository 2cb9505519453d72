package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"vidblur/internal/media/ffprobe"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0.00 seconds (00:00)"},
		{59.5, "59.50 seconds (00:59)"},
		{754.25, "754.25 seconds (12:34)"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestApproxBitrateKbps(t *testing.T) {
	if _, ok := approxBitrateKbps(1000, 0); ok {
		t.Fatal("expected no bitrate without duration")
	}
	got, ok := approxBitrateKbps(1_250_000, 10)
	if !ok || got != 1000 {
		t.Fatalf("approxBitrateKbps = %v, %v; want 1000, true", got, ok)
	}
}

func TestMetadataRows(t *testing.T) {
	rows := metadataRows(ffprobe.VideoInfo{
		Width:           1920,
		Height:          1080,
		FPS:             29.97,
		FrameCount:      17982,
		DurationSeconds: 600,
		SizeBytes:       75_000_000,
	})
	want := [][2]string{
		{"Resolution", "1920x1080"},
		{"FPS", "29.97"},
		{"Total Frames", "17,982"},
		{"Duration", "600.00 seconds (10:00)"},
		{"Audio", "no"},
		{"File Size", "71.53 MB (72 MiB)"},
		{"Approx Bitrate", "1000 kbps"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("metadataRows mismatch (-want +got):\n%s", diff)
	}
}

func TestMetadataRowsWithoutSize(t *testing.T) {
	rows := metadataRows(ffprobe.VideoInfo{Width: 2, Height: 2, FPS: 30, FrameCount: 3, DurationSeconds: 0.1})
	if len(rows) != 5 {
		t.Fatalf("expected size rows to be omitted, got %v", rows)
	}
}
