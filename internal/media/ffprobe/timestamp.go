package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFrameNotFound is returned when ffprobe reports no frame at the index.
var ErrFrameNotFound = errors.New("frame not found")

type frameEntries struct {
	Frames []struct {
		PTSTime    string `json:"pts_time"`
		PktPTSTime string `json:"pkt_pts_time"`
	} `json:"frames"`
}

// FrameTimestamp returns the presentation time in seconds of the zero-based
// frame number of the first video stream.
func FrameTimestamp(ctx context.Context, binary, path string, frameNumber int) (float64, error) {
	if frameNumber < 0 {
		return 0, fmt.Errorf("ffprobe frame timestamp: negative frame number %d", frameNumber)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, errors.New("ffprobe frame timestamp: empty path")
	}
	output, err := run(ctx, binaryOrDefault(binary), FrameTimestampArgs(path, frameNumber)...)
	if err != nil {
		return 0, fmt.Errorf("ffprobe frame timestamp: %w", err)
	}
	return parseFrameTimestamp(output, frameNumber)
}

// FrameTimestampArgs builds the ffprobe arguments that read frames up to and
// including frameNumber.
func FrameTimestampArgs(path string, frameNumber int) []string {
	return []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "frame=pts_time,pkt_pts_time",
		"-read_intervals", fmt.Sprintf("%%+#%d", frameNumber+1),
		"-of", "json",
		path,
	}
}

func parseFrameTimestamp(output []byte, frameNumber int) (float64, error) {
	var entries frameEntries
	if err := json.Unmarshal(output, &entries); err != nil {
		return 0, fmt.Errorf("ffprobe frame timestamp parse: %w", err)
	}
	if frameNumber >= len(entries.Frames) {
		return 0, fmt.Errorf("frame %d: %w", frameNumber, ErrFrameNotFound)
	}
	frame := entries.Frames[frameNumber]
	for _, candidate := range []string{frame.PTSTime, frame.PktPTSTime} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || candidate == "N/A" {
			continue
		}
		value, err := strconv.ParseFloat(candidate, 64)
		if err != nil {
			return 0, fmt.Errorf("ffprobe frame timestamp parse %q: %w", candidate, err)
		}
		return value, nil
	}
	return 0, fmt.Errorf("frame %d has no timestamp: %w", frameNumber, ErrFrameNotFound)
}
