package ffprobe

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNoVideoStream is returned when the container holds no video stream.
var ErrNoVideoStream = errors.New("no video stream")

// VideoInfo summarises the first video stream together with container data.
type VideoInfo struct {
	Width           int
	Height          int
	FPS             float64
	FrameCount      int
	DurationSeconds float64
	SizeBytes       int64
	BitRate         int64
	HasAudio        bool
}

// Video extracts VideoInfo from the first video stream. The frame rate comes
// from avg_frame_rate, falling back to r_frame_rate. The frame count comes
// from nb_frames, falling back to round(duration * fps).
func (r Result) Video() (VideoInfo, error) {
	var stream *Stream
	for i := range r.Streams {
		if strings.EqualFold(r.Streams[i].CodecType, "video") {
			stream = &r.Streams[i]
			break
		}
	}
	if stream == nil {
		return VideoInfo{}, ErrNoVideoStream
	}

	info := VideoInfo{
		Width:     stream.Width,
		Height:    stream.Height,
		SizeBytes: r.SizeBytes(),
		BitRate:   r.BitRate(),
		HasAudio:  r.AudioStreamCount() > 0,
	}

	info.FPS = ParseRate(stream.AvgFrameRate)
	if info.FPS <= 0 {
		info.FPS = ParseRate(stream.RFrameRate)
	}

	duration := r.DurationSeconds()
	if math.IsNaN(duration) || duration <= 0 {
		duration = parseFloat(stream.Duration)
	}
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}
	info.DurationSeconds = duration

	if frames, err := strconv.Atoi(strings.TrimSpace(stream.NBFrames)); err == nil && frames > 0 {
		info.FrameCount = frames
	} else if info.FPS > 0 && duration > 0 {
		info.FrameCount = int(math.Round(duration * info.FPS))
	}
	return info, nil
}

// ParseRate converts an ffprobe rational such as "30000/1001" into frames per
// second. Zero denominators and malformed values yield 0.
func ParseRate(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	num, den, found := strings.Cut(value, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
