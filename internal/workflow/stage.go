package workflow

import (
	"context"
	"errors"

	"vidblur/internal/audio"
	"vidblur/internal/history"
	"vidblur/internal/logging"
	"vidblur/internal/render"
	"vidblur/internal/services"
)

type stagePlan struct {
	kind        history.Kind
	description string
	source      string
	videoOnly   string
	output      string
	kernel      int
	maxFrames   int
}

// renderStage blurs into the video-only path, then muxes the source audio
// into the final output for the rendered duration.
func (p *Pipeline) renderStage(ctx context.Context, plan stagePlan) (StageResult, error) {
	ctx = services.WithStage(ctx, plan.description)
	logger := logging.WithContext(ctx, p.logger)
	started := p.now()

	record := history.Render{
		Kind:       plan.kind,
		SourcePath: plan.source,
		OutputPath: plan.output,
		KernelSize: plan.kernel,
		StartedAt:  started,
	}
	if runID, ok := services.RunIDFromContext(ctx); ok {
		record.RunID = runID
	}

	video, err := p.deps.Renderer.Process(ctx, render.Request{
		Input:       plan.source,
		Output:      plan.videoOnly,
		Kernel:      plan.kernel,
		MaxFrames:   plan.maxFrames,
		Description: plan.description,
	})
	if err != nil {
		p.recordHistory(ctx, record, err)
		return StageResult{}, err
	}
	record.FrameCount = video.FrameCount
	record.FPS = video.FPS

	cmd := audio.MuxCommand{
		Processed:   video.Path,
		Source:      plan.source,
		Output:      plan.output,
		AudioOffset: p.cfg.Audio.OffsetSeconds,
	}
	if duration, ok := video.Duration(); ok {
		cmd.Duration = &duration
		record.DurationSeconds = &duration
	}
	muxed, err := p.deps.Muxer.Mux(ctx, cmd)
	record.AudioMuxed = muxed.AudioMuxed
	if err != nil {
		p.recordHistory(ctx, record, err)
		return StageResult{}, err
	}
	p.recordHistory(ctx, record, nil)

	logger.Info("stage complete",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("output", plan.output),
		logging.Int("frames", video.FrameCount),
		logging.Bool("audio_muxed", muxed.AudioMuxed),
	)
	return StageResult{Video: video, Output: plan.output, AudioMuxed: muxed.AudioMuxed}, nil
}

func (p *Pipeline) recordHistory(ctx context.Context, record history.Render, stageErr error) {
	if p.deps.History == nil {
		return
	}
	record.FinishedAt = p.now()
	switch {
	case stageErr == nil:
		record.Status = history.StatusCompleted
	case services.IsCancellation(stageErr):
		record.Status = history.StatusCancelled
		record.ErrorMessage = stageErr.Error()
	default:
		record.Status = history.StatusFailed
		record.ErrorMessage = stageErr.Error()
	}
	// Cancelled runs still get a row, so the write must not inherit cancellation.
	writeCtx := context.WithoutCancel(ctx)
	if _, err := p.deps.History.Record(writeCtx, record); err != nil && !errors.Is(err, context.Canceled) {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "failed to record render history", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete history.db if the schema changed"),
			logging.String(logging.FieldImpact, "render is missing from vidblur history"),
		)
	}
}
