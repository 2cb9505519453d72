package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"vidblur/internal/logging"
	"vidblur/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var raw bool
	var filter logs.Filter

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent vidblur log records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			out := cmd.OutOrStdout()
			emit := func(line string) {
				if filter.Match(line) {
					printLogLine(out, line, raw)
				}
			}

			// Filtering happens after the tail, so widen the window when a
			// filter is active.
			window := lines
			if filter.RunID != "" || filter.MinLevel != "" {
				window = lines * 20
			}
			tail, offset, err := logs.Tail(path, window)
			if err != nil {
				return err
			}
			var matched []string
			for _, line := range tail {
				if filter.Match(line) {
					matched = append(matched, line)
				}
			}
			if len(matched) > lines {
				matched = matched[len(matched)-lines:]
			}
			for _, line := range matched {
				printLogLine(out, line, raw)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, logs.DefaultPoll, emit)
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of records to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new records")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON records unchanged")
	cmd.Flags().StringVar(&filter.RunID, "run", "", "Only show records for this run ID")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "Minimum level to show (debug, info, warn, error)")
	return cmd
}

func printLogLine(w io.Writer, line string, raw bool) {
	if !raw {
		if entry, ok := logs.ParseEntry(line); ok {
			line = entry.String()
		}
	}
	fmt.Fprintln(w, line)
}
