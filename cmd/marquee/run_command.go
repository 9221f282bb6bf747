package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/listing"
	"marquee/internal/logging"
	"marquee/internal/pipeline"
	"marquee/internal/resolve"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var sourceFlags []string
	var outPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect listings from sources, enrich them, and write the combined output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if len(sourceFlags) == 0 {
				return fmt.Errorf("at least one --source name=path is required")
			}

			sources := make([]pipeline.Source, 0, len(sourceFlags))
			for _, spec := range sourceFlags {
				name, path, ok := strings.Cut(spec, "=")
				if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(path) == "" {
					return fmt.Errorf("invalid --source %q, want name=path", spec)
				}
				sources = append(sources, pipeline.NewFileSource(strings.TrimSpace(name), strings.TrimSpace(path)))
			}

			runner := pipeline.NewRunner(sources, cfg.Pipeline.SourceWorkers,
				time.Duration(cfg.Pipeline.SourceTimeout)*time.Second, logger)
			report, records := runner.Run(cmd.Context())
			runCtx := logging.WithRunID(cmd.Context(), report.RunID)

			var stats resolve.Stats
			if cfg.Pipeline.EnrichDisabled {
				logger.Info("enrichment disabled, writing raw listings")
			} else {
				engine, buildErr := ctx.buildEngine()
				if buildErr != nil {
					return buildErr
				}
				stats, err = engine.enricher.Enrich(runCtx, records)
				if err != nil {
					return err
				}
			}

			if outPath != "" {
				if err := listing.WriteFile(outPath, records); err != nil {
					return err
				}
			}
			if err := recordRun(cmd.Context(), cfg.Paths.ListingsDB, report, records, stats); err != nil {
				logger.Warn("run history not recorded", logging.Error(err))
			}

			printRunReport(cmd.OutOrStdout(), report, stats)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sourceFlags, "source", nil, "Listings source as name=path (repeatable)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write combined enriched listings to this JSON file")
	return cmd
}

func recordRun(ctx context.Context, dbPath string, report *pipeline.Report, records []listing.Record, stats resolve.Stats) error {
	store, err := listing.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.RecordRun(ctx, listing.RunSummary{
		RunID:      report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Sources:    len(report.Results),
		Listings:   len(records),
		Enriched:   stats.EnrichedRecords,
		Skipped:    stats.Skipped,
		Unmatched:  stats.Unmatched,
	}, records)
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := listing.OpenStore(cfg.Paths.ListingsDB)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.RunID,
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					strconv.Itoa(run.Sources),
					strconv.Itoa(run.Listings),
					strconv.Itoa(run.Enriched),
					strconv.Itoa(run.Skipped),
					strconv.Itoa(run.Unmatched),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Started", "Sources", "Listings", "Enriched", "Skipped", "Unmatched"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}
