package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/listing"
	"marquee/internal/pipeline"
	"marquee/internal/resolve"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var inPath string
	var outPath string

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Enrich an existing listings JSON file in place",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inPath == "" {
				return fmt.Errorf("--in is required")
			}
			if outPath == "" {
				outPath = inPath
			}

			records, err := listing.ReadFile(inPath)
			if err != nil {
				return err
			}
			engine, err := ctx.buildEngine()
			if err != nil {
				return err
			}
			stats, err := engine.enricher.Enrich(cmd.Context(), records)
			if err != nil {
				return err
			}
			if err := listing.WriteFile(outPath, records); err != nil {
				return err
			}
			printRunReport(cmd.OutOrStdout(), nil, stats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inPath, "in", "i", "", "Listings JSON file to enrich")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path (defaults to --in)")
	return cmd
}

func printRunReport(w io.Writer, report *pipeline.Report, stats resolve.Stats) {
	if report != nil {
		rows := make([][]string, 0, len(report.Results))
		for _, result := range report.Results {
			status := "ok"
			if result.Err != nil {
				status = result.Err.Error()
			}
			rows = append(rows, []string{
				result.Source,
				strconv.Itoa(result.Records),
				result.Duration.Round(time.Millisecond).String(),
				status,
			})
		}
		fmt.Fprintln(w, renderTable(
			[]string{"Source", "Records", "Duration", "Status"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
		))
	}

	fmt.Fprintln(w, renderTable(
		[]string{"Titles", "Cache Hits", "Resolved", "Skipped", "Unmatched", "Enriched"},
		[][]string{{
			strconv.Itoa(stats.Titles),
			strconv.Itoa(stats.CacheHits),
			strconv.Itoa(stats.NewlyResolved),
			strconv.Itoa(stats.Skipped),
			strconv.Itoa(stats.Unmatched),
			strconv.Itoa(stats.EnrichedRecords),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
}
