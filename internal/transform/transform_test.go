package transform_test

import (
	"errors"
	"testing"

	"refit/internal/catalog"
	"refit/internal/services"
	"refit/internal/source"
	"refit/internal/testsupport"
	"refit/internal/transform"
)

func rawListing() source.RawProduct {
	return source.RawProduct{
		ID:              "4424-510-800",
		Name:            "Wool Overshirt",
		Category:        "jackets",
		URL:             "https://example.test/p/4424-510-800",
		Price:           "79.95",
		OriginalPrice:   "99.95",
		Currency:        "eur",
		Description:     "A warm overshirt for everyday wear.",
		Materials:       []string{"Wool", "wool", "Polyamide", ""},
		CompositionText: "80% wool, 20% polyamide",
		Sizes:           []string{"S", "M", "M", "L"},
		SizeAvailability: map[string]bool{
			"S": true, "M": false, "L": true,
		},
		Colors: []string{"Ecru", "Navy"},
		Images: []string{"img/1.jpg", "img/2.jpg"},
	}
}

func newTransformer(t *testing.T) *transform.Transformer {
	t.Helper()
	return transform.New(testsupport.NewConfig(t), nil)
}

func TestTransformRejectsMissingFields(t *testing.T) {
	tr := newTransformer(t)

	raw := rawListing()
	raw.Name = ""
	if _, err := tr.Transform(raw); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}

	raw = rawListing()
	raw.URL = "not a url"
	if _, err := tr.Transform(raw); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for bad url, got %v", err)
	}

	raw = rawListing()
	raw.Price = "free"
	if _, err := tr.Transform(raw); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for non-numeric price, got %v", err)
	}

	raw = rawListing()
	raw.Price = "-5.00"
	if _, err := tr.Transform(raw); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}
}

func TestTransformNormalizesFields(t *testing.T) {
	tr := newTransformer(t)

	products, err := tr.Transform(rawListing())
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	parent := products[0]

	if parent.PriceCents != 7995 || parent.OriginalPriceCents != 9995 {
		t.Fatalf("unexpected prices %d/%d", parent.PriceCents, parent.OriginalPriceCents)
	}
	if parent.Currency != "EUR" {
		t.Fatalf("expected uppercased currency, got %q", parent.Currency)
	}
	wantMaterials := []string{"Wool", "Polyamide"}
	if len(parent.Materials) != len(wantMaterials) {
		t.Fatalf("expected deduped materials, got %v", parent.Materials)
	}
	for i, want := range wantMaterials {
		if parent.Materials[i] != want {
			t.Fatalf("expected material order preserved, got %v", parent.Materials)
		}
	}
	if len(parent.Sizes) != 3 {
		t.Fatalf("expected deduped sizes, got %v", parent.Sizes)
	}
	if len(parent.Composition) != 2 {
		t.Fatalf("expected parsed composition, got %v", parent.Composition)
	}
	if parent.Composition[0].Material != "wool" || parent.Composition[0].Percent != 80 {
		t.Fatalf("unexpected composition %v", parent.Composition)
	}
	if parent.CurationStatus != catalog.StatusPending {
		t.Fatalf("expected pending status, got %s", parent.CurationStatus)
	}
}

func TestTransformUnparseableCompositionIsNotFatal(t *testing.T) {
	tr := newTransformer(t)

	raw := rawListing()
	raw.CompositionText = "soft and comfortable"
	products, err := tr.Transform(raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if products[0].Composition != nil {
		t.Fatalf("expected nil composition, got %v", products[0].Composition)
	}
}

func TestTransformSingleColorEmitsOneProduct(t *testing.T) {
	tr := newTransformer(t)

	raw := rawListing()
	raw.Colors = []string{"Navy"}
	products, err := tr.Transform(raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	only := products[0]
	if only.Color != "" || only.ParentProductID != "" {
		t.Fatalf("expected non-variant row, got color=%q parent=%q", only.Color, only.ParentProductID)
	}
	if len(only.Colors) != 1 || only.Colors[0] != "Navy" {
		t.Fatalf("expected singleton colors list, got %v", only.Colors)
	}
}

func TestTransformExpandsColorVariants(t *testing.T) {
	tr := newTransformer(t)

	products, err := tr.Transform(rawListing())
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected parent plus 2 variants, got %d", len(products))
	}

	parent := products[0]
	if parent.Color != "" || parent.ParentProductID != "" {
		t.Fatalf("expected parent first, got %+v", parent)
	}
	if len(parent.Colors) != 2 {
		t.Fatalf("expected full color list on parent, got %v", parent.Colors)
	}

	wantIDs := map[string]string{
		"4424-510-800-ecru": "Ecru",
		"4424-510-800-navy": "Navy",
	}
	for _, variant := range products[1:] {
		wantColor, ok := wantIDs[variant.ID]
		if !ok {
			t.Fatalf("unexpected variant id %q", variant.ID)
		}
		if variant.Color != wantColor {
			t.Fatalf("variant %s: expected color %q, got %q", variant.ID, wantColor, variant.Color)
		}
		if variant.ParentProductID != parent.ID {
			t.Fatalf("variant %s: expected parent %q, got %q", variant.ID, parent.ID, variant.ParentProductID)
		}
		if len(variant.ImagePaths) != len(parent.ImagePaths) {
			t.Fatalf("variant %s: expected inherited images, got %v", variant.ID, variant.ImagePaths)
		}
		if len(variant.Sizes) != len(parent.Sizes) {
			t.Fatalf("variant %s: expected inherited sizes, got %v", variant.ID, variant.Sizes)
		}
	}
}

func TestTransformIsIdempotent(t *testing.T) {
	tr := newTransformer(t)

	first, err := tr.Transform(rawListing())
	if err != nil {
		t.Fatalf("first Transform: %v", err)
	}
	second, err := tr.Transform(rawListing())
	if err != nil {
		t.Fatalf("second Transform: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected identical product counts, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("expected identical ids at %d, got %q and %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestTransformPartitionsPerColorAssets(t *testing.T) {
	tr := newTransformer(t)

	raw := rawListing()
	raw.ColorImages = map[string][]string{
		"Ecru": {"img/ecru-1.jpg"},
	}
	raw.ColorSizes = map[string][]string{
		"Ecru": {"S", "M"},
	}
	products, err := tr.Transform(raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	var ecru, navy *catalog.Product
	for _, p := range products[1:] {
		switch p.Color {
		case "Ecru":
			ecru = p
		case "Navy":
			navy = p
		}
	}
	if ecru == nil || navy == nil {
		t.Fatal("expected both variants")
	}
	if len(ecru.ImagePaths) != 1 || ecru.ImagePaths[0] != "img/ecru-1.jpg" {
		t.Fatalf("expected partitioned images for ecru, got %v", ecru.ImagePaths)
	}
	if len(ecru.Sizes) != 2 {
		t.Fatalf("expected partitioned sizes for ecru, got %v", ecru.Sizes)
	}
	if ecru.SizeAvailability["M"] != false || ecru.SizeAvailability["S"] != true {
		t.Fatalf("expected availability subset, got %v", ecru.SizeAvailability)
	}
	// Navy has no per-color data and inherits the parent's full set.
	if len(navy.ImagePaths) != 2 || len(navy.Sizes) != 3 {
		t.Fatalf("expected inherited assets for navy, got %v %v", navy.ImagePaths, navy.Sizes)
	}
}

func TestTransformInheritanceDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Transform.VariantsInheritParentAssets = false
	tr := transform.New(cfg, nil)

	products, err := tr.Transform(rawListing())
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	for _, variant := range products[1:] {
		if len(variant.ImagePaths) != 0 || len(variant.Sizes) != 0 {
			t.Fatalf("expected empty assets when inheritance disabled, got %+v", variant)
		}
	}
}

func TestTransformSlugCollisionFirstWriteWins(t *testing.T) {
	tr := newTransformer(t)

	raw := rawListing()
	raw.Colors = []string{"Écru", "Ecru!"}
	products, err := tr.Transform(raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	// Parent plus the first color only; the later colliding color is dropped.
	if len(products) != 2 {
		t.Fatalf("expected parent and first variant, got %d products", len(products))
	}
	variant := products[1]
	if variant.ID != "4424-510-800-ecru" {
		t.Fatalf("unexpected variant id %s", variant.ID)
	}
	if variant.Color != "Écru" {
		t.Fatalf("expected first color to keep the id, got %q", variant.Color)
	}
}

func TestTransformAttachesInferredPayload(t *testing.T) {
	tr := newTransformer(t)

	products, err := tr.Transform(rawListing())
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	payload := products[0].TagsAIRaw
	if len(payload[catalog.FieldWeight]) != 1 || payload[catalog.FieldWeight][0].Value != "heavy" {
		t.Fatalf("expected heavy weight inference from 'warm'/'wool', got %v", payload[catalog.FieldWeight])
	}
	if len(payload[catalog.FieldFormality]) != 1 {
		t.Fatalf("expected formality inference, got %v", payload[catalog.FieldFormality])
	}
	for _, variant := range products[1:] {
		if len(variant.TagsAIRaw) == 0 {
			t.Fatalf("expected payload cloned to variant %s", variant.ID)
		}
	}
}
