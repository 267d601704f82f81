// Package tagmerge composes the three tag layers of a product into a single
// read-time view. The layers stay independent in storage; nothing here writes.
package tagmerge

import (
	"context"
	"fmt"

	"refit/internal/catalog"
	"refit/internal/services"
)

// Layer identifies which source a merged value came from.
type Layer string

const (
	LayerInferred Layer = "inferred"
	LayerAI       Layer = "ai"
	LayerCurated  Layer = "curated"
)

// Value is one tag value in the merged view, annotated with its layer and
// whether a curator has rejected it. Rejected values are flagged, never
// removed.
type Value struct {
	Field    string `json:"field"`
	Value    string `json:"value"`
	Layer    Layer  `json:"layer"`
	Rejected bool   `json:"rejected"`
}

// View is the full merged picture of one product's tags. All three layers are
// returned; precedence is a display concern left to the caller.
type View struct {
	Product     *catalog.Product      `json:"product"`
	Inferred    []Value               `json:"inferred"`
	AIGenerated []Value               `json:"ai_generated"`
	Curated     []Value               `json:"curated"`
	Rejected    []catalog.RejectedTag `json:"rejected"`
	Mark        *catalog.CurationMark `json:"curation_mark,omitempty"`
}

// Merged reads a product and its overlay records and assembles the view.
func Merged(ctx context.Context, store catalog.Store, productID string) (*View, error) {
	product, err := store.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("merge view for %s: %w", productID, err)
	}

	rejected, err := store.RejectedTags(ctx, productID)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "merge", "rejected_tags", productID, err)
	}
	aiTags, err := store.AITags(ctx, productID)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "merge", "ai_tags", productID, err)
	}
	curated, err := store.CuratedTags(ctx, productID)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "merge", "curated_tags", productID, err)
	}
	mark, err := store.CurationMarkFor(ctx, productID)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "merge", "curation_mark", productID, err)
	}

	rejectedSet := make(map[[2]string]bool, len(rejected))
	for _, r := range rejected {
		rejectedSet[[2]string{r.FieldName, r.FieldValue}] = true
	}

	view := &View{
		Product:  product,
		Rejected: rejected,
		Mark:     mark,
	}
	for _, v := range inferredValues(product) {
		v.Rejected = rejectedSet[[2]string{v.Field, v.Value}]
		view.Inferred = append(view.Inferred, v)
	}
	for _, tag := range aiTags {
		view.AIGenerated = append(view.AIGenerated, Value{
			Field:    tag.FieldName,
			Value:    tag.FieldValue,
			Layer:    LayerAI,
			Rejected: rejectedSet[[2]string{tag.FieldName, tag.FieldValue}],
		})
	}
	for _, tag := range curated {
		view.Curated = append(view.Curated, Value{
			Field: tag.FieldName,
			Value: tag.FieldValue,
			Layer: LayerCurated,
		})
	}
	return view, nil
}

// Authoritative resolves the single value a consumer should display for a
// field, preferring curated over AI over inferred and skipping rejected
// values. It is a convenience for callers; the view itself carries all
// layers.
func (v *View) Authoritative(field string) (Value, bool) {
	for _, layer := range [][]Value{v.Curated, v.AIGenerated, v.Inferred} {
		for _, value := range layer {
			if value.Field == field && !value.Rejected {
				return value, true
			}
		}
	}
	return Value{}, false
}

// inferredValues flattens the product row's canonical tag fields into merge
// values. A product that has not been through the policy engine yields only
// its fit.
func inferredValues(product *catalog.Product) []Value {
	var values []Value
	add := func(field, value string) {
		if value != "" {
			values = append(values, Value{Field: field, Value: value, Layer: LayerInferred})
		}
	}
	add(catalog.FieldFit, product.Fit)
	tags := product.TagsFinal
	if tags == nil {
		return values
	}
	for _, style := range tags.StyleIdentity {
		add(catalog.FieldStyleIdentity, style)
	}
	add(catalog.FieldSilhouette, tags.Silhouette)
	for _, occasion := range tags.Context {
		add(catalog.FieldContext, occasion)
	}
	add(catalog.FieldPattern, tags.Pattern)
	for _, construction := range tags.Construction {
		add(catalog.FieldConstruction, construction)
	}
	add(catalog.FieldLayerRole, tags.LayerRole)
	add(catalog.FieldFormality, tags.Formality)
	add(catalog.FieldWeight, tags.Weight)
	add(catalog.FieldShoeType, tags.ShoeType)
	add(catalog.FieldShoeProfile, tags.ShoeProfile)
	add(catalog.FieldShoeClosure, tags.ShoeClosure)
	return values
}
