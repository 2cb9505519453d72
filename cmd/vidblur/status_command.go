package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidblur/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check external tools and configured directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := preflight.CheckSystemDeps(cfg)
			results := preflight.RunAll(cfg)

			var lines []string
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(statuses, colorize)...)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Paths", colorize)...)
			lines = append(lines, preflightLines(results, colorize)...)
			lines = append(lines, renderStatusLine("History", statusInfo, cfg.HistoryPath(), colorize))
			lines = append(lines, renderStatusLine("CFR conversion", statusInfo, yesNo(cfg.CFR.Enabled), colorize))
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}
