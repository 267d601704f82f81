package transform

import (
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"refit/internal/catalog"
	"refit/internal/config"
	"refit/internal/logging"
	"refit/internal/services"
	"refit/internal/source"
)

// Transformer turns raw listings into catalog products. It holds no mutable
// state after construction and is safe for concurrent use.
type Transformer struct {
	validate            *validator.Validate
	inheritParentAssets bool
	defaultCurrency     string
	logger              *slog.Logger
}

// New builds a Transformer from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Transformer {
	return &Transformer{
		validate:            validator.New(validator.WithRequiredStructEnabled()),
		inheritParentAssets: cfg.Transform.VariantsInheritParentAssets,
		defaultCurrency:     "EUR",
		logger:              logging.NewComponentLogger(logger, "transform"),
	}
}

// Transform validates and normalizes one raw listing, expanding multi-color
// listings into a parent product plus one variant per color. The returned
// slice always lists the parent first. Output is a pure function of the
// input; identical raw records produce identical product ids. Colors whose
// slugs collide resolve first-write-wins: the earlier color keeps the id and
// later ones are dropped with a warning.
func (t *Transformer) Transform(raw source.RawProduct) ([]*catalog.Product, error) {
	if err := t.validate.Struct(raw); err != nil {
		return nil, services.Wrap(services.ErrValidation, "transform", "validate", raw.ID, err)
	}

	priceCents, err := ParsePriceCents(raw.Price)
	if err != nil {
		return nil, err
	}
	var originalCents int64
	if strings.TrimSpace(raw.OriginalPrice) != "" {
		originalCents, err = ParsePriceCents(raw.OriginalPrice)
		if err != nil {
			return nil, err
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(raw.Currency))
	if currency == "" {
		currency = t.defaultCurrency
	}

	name := strings.TrimSpace(raw.Name)
	description := strings.TrimSpace(raw.Description)
	materials := dedupeList(raw.Materials)
	sizes := dedupeList(raw.Sizes)
	colors := dedupeList(raw.Colors)

	fit := InferFit(name, description)
	payload := inferredPayload(name, description, colors, materials, raw.Category, priceCents)

	parent := &catalog.Product{
		ID:                 strings.TrimSpace(raw.ID),
		Name:               name,
		Category:           raw.Category,
		SourceURL:          raw.URL,
		PriceCents:         priceCents,
		OriginalPriceCents: originalCents,
		Currency:           currency,
		Description:        description,
		Materials:          materials,
		Fit:                fit,
		Composition:        ParseComposition(raw.CompositionText),
		Sizes:              sizes,
		SizeAvailability:   raw.SizeAvailability,
		Colors:             colors,
		ImagePaths:         dedupeList(raw.Images),
		TagsAIRaw:          payload,
		CurationStatus:     catalog.StatusPending,
	}

	if len(colors) <= 1 {
		return []*catalog.Product{parent}, nil
	}

	products := make([]*catalog.Product, 0, len(colors)+1)
	products = append(products, parent)
	seen := make(map[string]string, len(colors))
	for _, color := range colors {
		variantID := VariantID(parent.ID, color)
		if previous, ok := seen[variantID]; ok {
			// First write wins. The later color is dropped, the record as a
			// whole still goes through.
			t.logger.Warn("variant id collision, dropping later color",
				logging.String(logging.FieldProductID, parent.ID),
				logging.String("variant_id", variantID),
				logging.String("kept_color", previous),
				logging.String("dropped_color", color))
			continue
		}
		seen[variantID] = color
		products = append(products, t.buildVariant(parent, raw, variantID, color))
	}
	return products, nil
}

func (t *Transformer) buildVariant(parent *catalog.Product, raw source.RawProduct, variantID, color string) *catalog.Product {
	variant := *parent
	variant.ID = variantID
	variant.Color = color
	variant.ParentProductID = parent.ID
	variant.Colors = []string{color}
	variant.TagsAIRaw = parent.TagsAIRaw.Clone()

	// Assets partition to the variant only when the source distinguishes
	// them per color; otherwise the variant inherits the parent's full set
	// (or nothing, depending on configuration).
	if images, ok := raw.ColorImages[color]; ok {
		variant.ImagePaths = dedupeList(images)
	} else if !t.inheritParentAssets {
		variant.ImagePaths = nil
	}
	if sizes, ok := raw.ColorSizes[color]; ok {
		variant.Sizes = dedupeList(sizes)
		variant.SizeAvailability = subsetAvailability(raw.SizeAvailability, variant.Sizes)
	} else if !t.inheritParentAssets {
		variant.Sizes = nil
		variant.SizeAvailability = nil
	}
	return &variant
}

func inferredPayload(name, description string, colors, materials []string, category string, priceCents int64) catalog.RawTagPayload {
	payload := catalog.RawTagPayload{}
	if styles := InferStyleTags(name, description, colors, materials, category, priceCents); len(styles) > 0 {
		payload[catalog.FieldStyleIdentity] = styles
	}
	if weight, ok := InferWeight(name, description, materials); ok {
		payload[catalog.FieldWeight] = []catalog.TagScore{weight}
	}
	payload[catalog.FieldFormality] = []catalog.TagScore{
		InferFormality(name, description, colors, materials, category, InferFit(name, description)),
	}
	return payload
}

func subsetAvailability(availability map[string]bool, sizes []string) map[string]bool {
	if len(availability) == 0 || len(sizes) == 0 {
		return nil
	}
	out := make(map[string]bool, len(sizes))
	for _, size := range sizes {
		if available, ok := availability[size]; ok {
			out[size] = available
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// dedupeList trims entries and removes case-insensitive duplicates while
// preserving first-seen order.
func dedupeList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		cleaned := strings.TrimSpace(value)
		if cleaned == "" {
			continue
		}
		key := strings.ToLower(cleaned)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, cleaned)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
