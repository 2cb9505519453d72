package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vidblur/internal/history"
)

var statusTitle = cases.Title(language.English)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sample and full renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			renders, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				if renders == nil {
					renders = []history.Render{}
				}
				return writeJSON(cmd, renders)
			}
			out := cmd.OutOrStdout()
			if len(renders) == 0 {
				fmt.Fprintln(out, "No renders recorded yet.")
			} else {
				fmt.Fprintln(out, renderHistoryTable(renders, time.Now()))
			}
			fmt.Fprintf(out, "History: %s\n", store.Path())
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", history.DefaultLimit, "Maximum number of renders to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit renders as JSON")
	return cmd
}

func renderHistoryTable(renders []history.Render, now time.Time) string {
	headers := []string{"ID", "Kind", "Status", "Kernel", "Frames", "Audio", "Elapsed", "Finished", "Output"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight, alignLeft, alignLeft}
	rows := make([][]string, 0, len(renders))
	for _, r := range renders {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			string(r.Kind),
			statusTitle.String(string(r.Status)),
			strconv.Itoa(r.KernelSize),
			countPrinter.Sprintf("%d", r.FrameCount),
			yesNo(r.AudioMuxed),
			r.Elapsed().Round(time.Second).String(),
			humanize.RelTime(r.FinishedAt, now, "ago", "from now"),
			filepath.Base(r.OutputPath),
		})
	}
	return renderTable(headers, rows, aligns)
}
