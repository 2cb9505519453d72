package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidblur/internal/audio"
	"vidblur/internal/blur"
	"vidblur/internal/config"
	"vidblur/internal/history"
	"vidblur/internal/logging"
	"vidblur/internal/media/transcode"
	"vidblur/internal/preflight"
	"vidblur/internal/preview"
	"vidblur/internal/render"
	"vidblur/internal/workflow"
)

type runFlags struct {
	output       string
	skipSample   bool
	debug        bool
	cfrFPS       float64
	noCFR        bool
	strength     int
	assumeYes    bool
	sampleFrames int
	workers      int
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [source]",
		Short: "Pick a blur strength, render a sample, then blur the whole video",
		Long: "Convert the source to a constant frame rate, pick a blur strength from a\n" +
			"preview frame, render a short sample with audio, and after confirmation\n" +
			"blur the entire video.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCfg := *cfg
			if err := applyRunFlags(cmd, &runCfg, flags, args); err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(&runCfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return executeRun(cmd, &runCfg, flags, logger)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Final output path (default from paths.output_video)")
	cmd.Flags().BoolVar(&flags.skipSample, "skip-sample", false, "Skip creating the sample video")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Print source video metadata before processing")
	cmd.Flags().Float64Var(&flags.cfrFPS, "cfr-fps", 0, "Convert the source to CFR at this FPS (default from cfr.fps)")
	cmd.Flags().BoolVar(&flags.noCFR, "no-cfr", false, "Read the source as-is without CFR conversion")
	cmd.Flags().IntVar(&flags.strength, "strength", -1, "Blur strength; skips the interactive picker")
	cmd.Flags().BoolVarP(&flags.assumeYes, "yes", "y", false, "Process the entire video without asking")
	cmd.Flags().IntVar(&flags.sampleFrames, "sample-frames", 0, "Frames in the sample (default from processing.sample_frames)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Blur workers (default from processing.workers)")
	return cmd
}

// applyRunFlags layers command-line overrides onto a copy of the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, flags *runFlags, args []string) error {
	if len(args) > 0 {
		cfg.Paths.SourceVideo = strings.TrimSpace(args[0])
		cfg.Paths.CFRVideo = ""
	}
	if flags.output != "" {
		cfg.Paths.OutputVideo = flags.output
	}
	if cmd.Flags().Changed("cfr-fps") {
		cfg.CFR.FPS = flags.cfrFPS
	}
	if flags.noCFR {
		cfg.CFR.Enabled = false
	}
	if cmd.Flags().Changed("sample-frames") {
		cfg.Processing.SampleFrames = flags.sampleFrames
	}
	if cmd.Flags().Changed("workers") {
		cfg.Processing.Workers = flags.workers
	}
	if cmd.Flags().Changed("strength") {
		if flags.strength < 0 || flags.strength > cfg.Processing.MaxStrength {
			return fmt.Errorf("--strength must be between 0 and %d", cfg.Processing.MaxStrength)
		}
	}
	if cfg.Processing.SkipSample {
		flags.skipSample = true
	}
	if strings.TrimSpace(cfg.Paths.SourceVideo) == "" {
		return errors.New("no source video: pass one to `vidblur run` or set paths.source_video")
	}
	return cfg.Finalize()
}

func executeRun(cmd *cobra.Command, cfg *config.Config, flags *runFlags, logger *slog.Logger) error {
	runCtx := cmd.Context()
	out := cmd.OutOrStdout()

	logging.CleanupOldLogs(logger, cfg.Paths.LogDir, "*.log", cfg.Logging.RetentionDays, time.Now())

	if err := checkRunPrerequisites(cfg); err != nil {
		return err
	}

	source := cfg.Paths.SourceVideo
	if cfg.CFR.Enabled {
		converted, err := transcode.New(cfg.FFmpegBinary(), logger).EnsureCFR(runCtx, source, cfg.Paths.CFRVideo, transcode.CFROptions{
			FPS:    cfg.CFR.FPS,
			Preset: cfg.CFR.Preset,
			CRF:    cfg.CFR.CRF,
		})
		if err != nil {
			return err
		}
		if converted {
			fmt.Fprintf(out, "CFR video created: %s\n", cfg.Paths.CFRVideo)
		} else {
			fmt.Fprintf(out, "CFR video already exists: %s\n", cfg.Paths.CFRVideo)
		}
		source = cfg.Paths.CFRVideo
	}

	if flags.debug {
		info, err := probeVideo(runCtx, cfg, source)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, renderKeyValueTable("Source Video Metadata", metadataRows(info)))
	}

	var renderOpts []render.Option
	if isTerminal(cmd.ErrOrStderr()) {
		renderOpts = append(renderOpts, render.WithProgressWriter(cmd.ErrOrStderr()))
	}

	in := bufio.NewReader(cmd.InOrStdin())
	deps := workflow.Dependencies{
		Selector:  preview.NewPicker(cfg, in, out, logger),
		Confirmer: workflow.NewPromptConfirmer(in, out),
		Renderer:  render.NewProcessor(cfg, logger, renderOpts...),
		Muxer:     audio.NewMuxer(cfg.FFmpegBinary(), logger),
		Out:       out,
	}
	store, err := history.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "render history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not appear in vidblur history"),
		)
	} else {
		defer store.Close()
		deps.History = store
	}

	pipeline, err := workflow.New(cfg, logger, deps)
	if err != nil {
		return err
	}
	opts := workflow.Options{
		Source:     source,
		SkipSample: flags.skipSample,
		AssumeYes:  flags.assumeYes,
	}
	if cmd.Flags().Changed("strength") {
		opts.Kernel = blur.KernelSize(flags.strength)
	}
	_, err = pipeline.Run(runCtx, opts)
	return err
}

func checkRunPrerequisites(cfg *config.Config) error {
	var problems []string
	for _, status := range preflight.CheckSystemDeps(cfg) {
		if !status.Available && !status.Optional {
			problems = append(problems, fmt.Sprintf("%s: %s", status.Name, detailOr(status.Detail, "not available")))
		}
	}
	for _, result := range preflight.Failed(preflight.RunAll(cfg)) {
		problems = append(problems, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("preflight checks failed:\n  %s", strings.Join(problems, "\n  "))
}
