package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"refit/internal/catalog"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog and tracking statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCatalog(cmd.Context())
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("catalog stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderCatalogStats(stats))

			tracker, err := ctx.openTracking()
			if err != nil {
				return fmt.Errorf("open tracking store: %w", err)
			}
			if tracker == nil {
				return nil
			}
			defer tracker.Close()

			trackingStats, err := tracker.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("tracking stats: %w", err)
			}
			fmt.Fprintf(out, "\nTracked items: %d\n", trackingStats.Count)
			return nil
		},
	}
}

func renderCatalogStats(stats catalog.Stats) string {
	rows := [][]string{
		{"Products", strconv.Itoa(stats.Products)},
		{"Parents", strconv.Itoa(stats.Parents)},
		{"Variants", strconv.Itoa(stats.Variants)},
	}

	categories := make([]string, 0, len(stats.ByCategory))
	for category := range stats.ByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		rows = append(rows, []string{"category " + category, strconv.Itoa(stats.ByCategory[category])})
	}

	statuses := make([]string, 0, len(stats.ByStatus))
	for status := range stats.ByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		rows = append(rows, []string{"status " + status, strconv.Itoa(stats.ByStatus[catalog.CurationStatus(status)])})
	}

	return metricsTable(rows)
}
