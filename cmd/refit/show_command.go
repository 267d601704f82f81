package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"refit/internal/catalog"
	"refit/internal/tagmerge"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show the merged tag view of one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCatalog(cmd.Context())
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			view, err := tagmerge.Merged(cmd.Context(), store, args[0])
			if errors.Is(err, catalog.ErrNotFound) {
				return fmt.Errorf("no product with id %s", args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			product := view.Product
			fmt.Fprintf(out, "%s  %s (%s)\n", product.ID, product.Name, product.Category)
			fmt.Fprintf(out, "Price: %d %s  Status: %s", product.PriceCents, product.Currency, product.CurationStatus)
			if product.PolicyVersion != "" {
				fmt.Fprintf(out, "  Policy: %s", product.PolicyVersion)
			}
			fmt.Fprintln(out)
			if product.IsVariant() {
				fmt.Fprintf(out, "Variant of %s, color %s\n", product.ParentProductID, product.Color)
			}

			fmt.Fprintln(out, renderLayers(view))
			return nil
		},
	}
}

func renderLayers(view *tagmerge.View) string {
	rows := make([][]string, 0, len(view.Inferred)+len(view.AIGenerated)+len(view.Curated))
	appendLayer := func(values []tagmerge.Value) {
		for _, value := range values {
			flag := ""
			if value.Rejected {
				flag = "rejected"
			}
			rows = append(rows, []string{string(value.Layer), value.Field, value.Value, flag})
		}
	}
	appendLayer(view.Curated)
	appendLayer(view.AIGenerated)
	appendLayer(view.Inferred)

	return listTable([]string{"Layer", "Field", "Value", ""}, rows)
}
