package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vidblur/internal/config"
	"vidblur/internal/media/ffprobe"
	"vidblur/internal/media/transcode"
)

const defaultTrimSeconds = 600

func newCFRCommand(ctx *commandContext) *cobra.Command {
	var fps float64
	var preset string
	var crf int

	cmd := &cobra.Command{
		Use:   "cfr <source> [destination]",
		Short: "Re-encode a video at a constant frame rate",
		Long: "Re-encode a video at a constant frame rate. The destination defaults to\n" +
			"<source>_cfr.<ext>; an existing destination is left untouched.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			src, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			dst := ""
			if len(args) > 1 {
				if dst, err = config.ExpandPath(args[1]); err != nil {
					return err
				}
			} else {
				derived := *cfg
				derived.Paths.SourceVideo = src
				derived.Paths.CFRVideo = ""
				if err := derived.Finalize(); err != nil {
					return err
				}
				dst = derived.Paths.CFRVideo
			}

			opts := transcode.CFROptions{FPS: cfg.CFR.FPS, Preset: cfg.CFR.Preset, CRF: cfg.CFR.CRF}
			if cmd.Flags().Changed("fps") {
				opts.FPS = fps
			}
			if cmd.Flags().Changed("preset") {
				opts.Preset = preset
			}
			if cmd.Flags().Changed("crf") {
				opts.CRF = crf
			}

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			converted, err := transcode.New(cfg.FFmpegBinary(), logger).EnsureCFR(cmd.Context(), src, dst, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if converted {
				fmt.Fprintf(out, "CFR video created: %s\n", dst)
			} else {
				fmt.Fprintf(out, "CFR video already exists: %s\n", dst)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&fps, "fps", 0, "Target frame rate (default from cfr.fps)")
	cmd.Flags().StringVar(&preset, "preset", "", "libx264 preset (default from cfr.preset)")
	cmd.Flags().IntVar(&crf, "crf", 0, "libx264 CRF (default from cfr.crf)")
	return cmd
}

func newTrimCommand(ctx *commandContext) *cobra.Command {
	var seconds float64

	cmd := &cobra.Command{
		Use:   "trim <source> <destination>",
		Short: "Copy the first seconds of a video into a short test clip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			src, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			dst, err := config.ExpandPath(args[1])
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			if err := transcode.New(cfg.FFmpegBinary(), logger).Trim(cmd.Context(), src, dst, seconds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test clip saved to %s\n", dst)
			return nil
		},
	}
	cmd.Flags().Float64Var(&seconds, "seconds", defaultTrimSeconds, "Length of the clip in seconds")
	return cmd
}

func newFrameTimeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "frame-time <video> <frame>",
		Short: "Print the presentation timestamp of a frame",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			frame, err := strconv.Atoi(strings.TrimSpace(args[1]))
			if err != nil || frame < 0 {
				return fmt.Errorf("invalid frame number %q", args[1])
			}
			ts, err := ffprobe.FrameTimestamp(cmd.Context(), cfg.FFprobeBinary(), path, frame)
			if errors.Is(err, ffprobe.ErrFrameNotFound) {
				return fmt.Errorf("frame %d not found in %s", frame, path)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Frame %d timestamp: %s seconds\n", frame, strconv.FormatFloat(ts, 'f', 6, 64))
			return nil
		},
	}
}
