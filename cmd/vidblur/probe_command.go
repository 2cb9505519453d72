package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidblur/internal/config"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe <video>",
		Short: "Print resolution, frame rate, frame count, and size of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			info, err := probeVideo(cmd.Context(), cfg, path)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, info)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderKeyValueTable("Source Video Metadata", metadataRows(info)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the metadata as JSON")
	return cmd
}
