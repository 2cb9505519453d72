package main

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"vidblur/internal/config"
	"vidblur/internal/media/ffprobe"
)

var countPrinter = message.NewPrinter(language.English)

func probeVideo(ctx context.Context, cfg *config.Config, path string) (ffprobe.VideoInfo, error) {
	result, err := ffprobe.Inspect(ctx, cfg.FFprobeBinary(), path)
	if err != nil {
		return ffprobe.VideoInfo{}, err
	}
	return result.Video()
}

// metadataRows formats the source summary shown by probe and run --debug.
func metadataRows(info ffprobe.VideoInfo) [][2]string {
	rows := [][2]string{
		{"Resolution", fmt.Sprintf("%dx%d", info.Width, info.Height)},
		{"FPS", strconv.FormatFloat(info.FPS, 'f', -1, 64)},
		{"Total Frames", countPrinter.Sprintf("%d", info.FrameCount)},
		{"Duration", formatDuration(info.DurationSeconds)},
		{"Audio", yesNo(info.HasAudio)},
	}
	if info.SizeBytes > 0 {
		rows = append(rows, [2]string{"File Size", fmt.Sprintf("%.2f MB (%s)", float64(info.SizeBytes)/1024/1024, humanize.IBytes(uint64(info.SizeBytes)))})
		if kbps, ok := approxBitrateKbps(info.SizeBytes, info.DurationSeconds); ok {
			rows = append(rows, [2]string{"Approx Bitrate", fmt.Sprintf("%.0f kbps", kbps)})
		}
	}
	return rows
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0.00 seconds (00:00)"
	}
	minutes := int(math.Floor(seconds / 60))
	secs := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%.2f seconds (%02d:%02d)", seconds, minutes, secs)
}

func approxBitrateKbps(sizeBytes int64, seconds float64) (float64, bool) {
	if sizeBytes <= 0 || seconds <= 0 {
		return 0, false
	}
	return float64(sizeBytes) * 8 / seconds / 1000, true
}
