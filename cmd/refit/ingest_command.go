package main

import (
	"fmt"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"refit/internal/pipeline"
	"refit/internal/services"
	"refit/internal/source"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var categories []string
	var limit int
	var all bool
	var force bool
	var workers int
	var dryRun bool
	var skipImages bool
	var clearTracking bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run a batch ingest against the listing source",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Pipeline.Workers = workers
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := ctx.openCatalog(runCtx)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			tracker, err := ctx.openTracking()
			if err != nil {
				// The tracking ledger is disposable; without it every item
				// processes and the idempotent upsert absorbs the repeats.
				logger.Warn("tracking store unavailable, processing everything", "error", err)
				tracker = nil
			}
			if tracker != nil {
				defer tracker.Close()
			}

			if clearTracking && tracker != nil {
				removed, err := tracker.Clear(runCtx)
				if err != nil {
					return fmt.Errorf("clear tracking: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d tracked items\n", removed)
			}

			opts := pipeline.Options{
				Categories: categories,
				Force:      force,
				DryRun:     dryRun,
				SkipImages: skipImages,
			}
			switch {
			case all:
				opts.Limit = -1
			case limit > 0:
				opts.Limit = limit
			}

			runner := pipeline.NewRunner(cfg, source.NewClient(cfg, logger), store, tracker, logger)
			summary, err := runner.Run(runCtx, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSummary(summary))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&categories, "category", nil, "Category to ingest (repeatable, default all configured)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum items per category")
	cmd.Flags().BoolVar(&all, "all", false, "Ingest without a per-category limit")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Process items even when already tracked")
	cmd.Flags().IntVar(&workers, "workers", 0, "Override the configured worker count")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Transform and tag without writing anything")
	cmd.Flags().BoolVar(&skipImages, "skip-images", false, "Do not store image paths")
	cmd.Flags().BoolVar(&clearTracking, "clear-tracking", false, "Forget tracked items before the run")
	return cmd
}

func renderSummary(summary pipeline.Summary) string {
	rows := [][]string{
		{"Run ID", summary.RunID},
		{"Processed", strconv.Itoa(summary.Processed)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
		{"Products written", strconv.Itoa(summary.ProductsWritten)},
		{"Failed", strconv.Itoa(summary.FailedTotal())},
		{"Elapsed", summary.Elapsed.Round(time.Millisecond).String()},
	}

	kinds := make([]string, 0, len(summary.Failed))
	for kind := range summary.Failed {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		rows = append(rows, []string{"  failed " + kind, strconv.Itoa(summary.Failed[services.FailureKind(kind)])})
	}

	return metricsTable(rows)
}
