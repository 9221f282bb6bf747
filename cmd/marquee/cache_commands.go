package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/resolve"
	"marquee/internal/title"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the resolution cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newCacheListCommand(ctx))
	cmd.AddCommand(newCacheShowCommand(ctx))
	cmd.AddCommand(newCachePruneAbsentCommand(ctx))
	return cmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached title resolutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			keys := cache.Keys()
			if len(keys) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty.")
				return nil
			}

			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				entry, _ := cache.Lookup(key)
				switch {
				case entry.Absent:
					rows = append(rows, []string{key, "absent", "", ""})
				case entry.Film != nil:
					rows = append(rows, []string{
						key,
						strconv.FormatInt(entry.Film.TMDBID, 10),
						entry.Film.Title,
						strconv.Itoa(entry.Film.Year()),
					})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Key", "TMDB ID", "Title", "Year"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <title>",
		Short: "Show the cached resolution for a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			entry, ok := cache.Lookup(resolve.CacheKey(title.NewProfile(cfg.Market), args[0]))
			if !ok {
				return fmt.Errorf("no cache entry for %q", args[0])
			}
			encoded, err := json.MarshalIndent(entry, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}
}

func newCachePruneAbsentCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune-absent",
		Short: "Drop absent markers so unresolved titles are retried next run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			pruned := cache.PruneAbsent()
			if err := cache.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d absent marker(s).\n", pruned)
			return nil
		},
	}
}
