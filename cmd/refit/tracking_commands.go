package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newTrackingCommand(ctx *commandContext) *cobra.Command {
	trackingCmd := &cobra.Command{
		Use:   "tracking",
		Short: "Inspect or reset the ingest tracking store",
	}

	trackingCmd.AddCommand(newTrackingShowCommand(ctx))
	trackingCmd.AddCommand(newTrackingClearCommand(ctx))

	return trackingCmd
}

func newTrackingShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List tracked items",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := ctx.openTracking()
			if err != nil {
				return fmt.Errorf("open tracking store: %w", err)
			}
			if tracker == nil {
				return fmt.Errorf("tracking is disabled in configuration")
			}
			defer tracker.Close()

			records, err := tracker.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No tracked items")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.ProductID,
					record.Category,
					record.Name,
					strconv.FormatInt(record.PriceCents, 10),
					record.LastUpdatedAt.Format(time.RFC3339),
				})
			}
			fmt.Fprintln(out, listTable(
				[]string{"Product", "Category", "Name", "Price (cents)", "Last updated"},
				rows, 4))
			return nil
		},
	}
}

func newTrackingClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget all tracked items so the next ingest reprocesses everything",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := ctx.openTracking()
			if err != nil {
				return fmt.Errorf("open tracking store: %w", err)
			}
			if tracker == nil {
				return fmt.Errorf("tracking is disabled in configuration")
			}
			defer tracker.Close()

			removed, err := tracker.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d tracked items\n", removed)
			return nil
		},
	}
}
