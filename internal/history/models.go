package history

import "time"

// Kind distinguishes sample renders from full renders.
type Kind string

const (
	KindSample Kind = "sample"
	KindFull   Kind = "full"
)

// Status is the terminal state of a render.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Render is one recorded render.
type Render struct {
	ID              int64     `json:"id"`
	RunID           string    `json:"run_id"`
	Kind            Kind      `json:"kind"`
	SourcePath      string    `json:"source_path"`
	OutputPath      string    `json:"output_path"`
	KernelSize      int       `json:"kernel_size"`
	FrameCount      int       `json:"frame_count"`
	FPS             float64   `json:"fps"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	AudioMuxed      bool      `json:"audio_muxed"`
	Status          Status    `json:"status"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Elapsed returns the wall time the render took.
func (r Render) Elapsed() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
