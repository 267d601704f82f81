package catalog_test

import (
	"context"
	"errors"
	"testing"

	"refit/internal/catalog"
)

func sampleProduct(id string) *catalog.Product {
	return &catalog.Product{
		ID:         id,
		Name:       "Wool Overshirt",
		Category:   "jackets",
		SourceURL:  "https://example.test/p/" + id,
		PriceCents: 7995,
		Currency:   "EUR",
		Colors:     []string{"ecru", "navy"},
		Sizes:      []string{"S", "M", "L"},
	}
}

func TestUpsertIsIdempotentAndPreservesRawTags(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()

	first := sampleProduct("4424-510-800")
	first.TagsAIRaw = catalog.RawTagPayload{
		catalog.FieldStyleIdentity: {{Value: "workwear", Confidence: 0.82}},
	}
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := sampleProduct("4424-510-800")
	second.Name = "Wool Overshirt Updated"
	second.PriceCents = 5995
	second.TagsAIRaw = catalog.RawTagPayload{
		catalog.FieldStyleIdentity: {{Value: "minimal", Confidence: 0.99}},
	}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := store.GetByID(ctx, "4424-510-800")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Wool Overshirt Updated" {
		t.Fatalf("expected mutable fields replaced, got name %q", got.Name)
	}
	if got.PriceCents != 5995 {
		t.Fatalf("expected price replaced, got %d", got.PriceCents)
	}
	scores := got.TagsAIRaw[catalog.FieldStyleIdentity]
	if len(scores) != 1 || scores[0].Value != "workwear" {
		t.Fatalf("expected first raw payload preserved, got %+v", got.TagsAIRaw)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Fatalf("expected updated_at >= created_at, got %v < %v", got.UpdatedAt, got.CreatedAt)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Products != 1 {
		t.Fatalf("expected single row after re-upsert, got %d", stats.Products)
	}
}

func TestGetByIDMissing(t *testing.T) {
	store := catalog.NewMemoryStore()
	if _, err := store.GetByID(context.Background(), "nope"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByCategorySortedByID(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	for _, id := range []string{"b-2", "a-1", "c-3"} {
		if err := store.Upsert(ctx, sampleProduct(id)); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}
	other := sampleProduct("z-9")
	other.Category = "shoes"
	if err := store.Upsert(ctx, other); err != nil {
		t.Fatalf("upsert other category: %v", err)
	}

	products, err := store.ListByCategory(ctx, "jackets")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 jackets, got %d", len(products))
	}
	for i, want := range []string{"a-1", "b-2", "c-3"} {
		if products[i].ID != want {
			t.Fatalf("expected sorted ids, got %q at %d", products[i].ID, i)
		}
	}
}

func TestDeleteCascadesOverlays(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	if err := store.Upsert(ctx, sampleProduct("p-1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.AddCuratedTag(ctx, &catalog.CuratedTag{ProductID: "p-1", FieldName: catalog.FieldFormality, FieldValue: "casual", Curator: "ana"}); err != nil {
		t.Fatalf("curated: %v", err)
	}
	if err := store.AddRejectedTag(ctx, &catalog.RejectedTag{ProductID: "p-1", FieldName: catalog.FieldPattern, FieldValue: "striped"}); err != nil {
		t.Fatalf("rejected: %v", err)
	}
	if err := store.Delete(ctx, "p-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "p-1"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	curated, err := store.CuratedTags(ctx, "p-1")
	if err != nil {
		t.Fatalf("curated tags: %v", err)
	}
	if len(curated) != 0 {
		t.Fatalf("expected cascade delete of curated tags, got %d", len(curated))
	}
}

func TestOverlayTuplesAreUnique(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	if err := store.Upsert(ctx, sampleProduct("p-1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	entry := &catalog.CuratedTag{ProductID: "p-1", FieldName: catalog.FieldWeight, FieldValue: "midweight", Curator: "ana"}
	if err := store.AddCuratedTag(ctx, entry); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := store.AddCuratedTag(ctx, entry); err != nil {
		t.Fatalf("duplicate add: %v", err)
	}
	curated, err := store.CuratedTags(ctx, "p-1")
	if err != nil {
		t.Fatalf("curated tags: %v", err)
	}
	if len(curated) != 1 {
		t.Fatalf("expected duplicate tuple ignored, got %d entries", len(curated))
	}

	ai := &catalog.AITag{ProductID: "p-1", FieldName: catalog.FieldPattern, FieldValue: "solid", ModelID: "viewer-1", Confidence: 0.6}
	if err := store.AddAITag(ctx, ai); err != nil {
		t.Fatalf("ai add: %v", err)
	}
	ai2 := &catalog.AITag{ProductID: "p-1", FieldName: catalog.FieldPattern, FieldValue: "solid", ModelID: "viewer-2", Confidence: 0.9}
	if err := store.AddAITag(ctx, ai2); err != nil {
		t.Fatalf("ai re-add: %v", err)
	}
	aiTags, err := store.AITags(ctx, "p-1")
	if err != nil {
		t.Fatalf("ai tags: %v", err)
	}
	if len(aiTags) != 1 {
		t.Fatalf("expected single ai entry, got %d", len(aiTags))
	}
	if aiTags[0].ModelID != "viewer-2" || aiTags[0].Confidence != 0.9 {
		t.Fatalf("expected ai entry updated in place, got %+v", aiTags[0])
	}
}

func TestCurationMarkSinglePerProduct(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	if err := store.Upsert(ctx, sampleProduct("p-1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if mark, err := store.CurationMarkFor(ctx, "p-1"); err != nil || mark != nil {
		t.Fatalf("expected no mark yet, got %+v err=%v", mark, err)
	}
	if err := store.SetCurationMark(ctx, &catalog.CurationMark{ProductID: "p-1", Status: catalog.StatusNeedsFix, Curator: "ana"}); err != nil {
		t.Fatalf("set mark: %v", err)
	}
	if err := store.SetCurationMark(ctx, &catalog.CurationMark{ProductID: "p-1", Status: catalog.StatusApproved, Curator: "ana"}); err != nil {
		t.Fatalf("replace mark: %v", err)
	}
	mark, err := store.CurationMarkFor(ctx, "p-1")
	if err != nil {
		t.Fatalf("mark for: %v", err)
	}
	if mark == nil || mark.Status != catalog.StatusApproved {
		t.Fatalf("expected approved mark, got %+v", mark)
	}
}

func TestStatsCountsVariants(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()

	parent := sampleProduct("2753-001")
	if err := store.Upsert(ctx, parent); err != nil {
		t.Fatalf("upsert parent: %v", err)
	}
	variant := sampleProduct("2753-001-ecru")
	variant.Color = "ecru"
	variant.ParentProductID = "2753-001"
	if err := store.Upsert(ctx, variant); err != nil {
		t.Fatalf("upsert variant: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Products != 2 || stats.Parents != 1 || stats.Variants != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.ByCategory["jackets"] != 2 {
		t.Fatalf("expected 2 jackets, got %d", stats.ByCategory["jackets"])
	}
	if stats.ByStatus[catalog.StatusPending] != 2 {
		t.Fatalf("expected 2 pending, got %d", stats.ByStatus[catalog.StatusPending])
	}
}
