package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"refit/internal/services"
)

// PostgresStore implements Store on top of Postgres via bun.
type PostgresStore struct {
	db *bun.DB
}

// OpenPostgres connects to the catalog database and applies migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "open", "catalog DSN is empty", nil)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithApplicationName("refit"),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrStoreUnavailable, "catalog", "open", "ping database", err)
	}

	store := &PostgresStore{db: db}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) applyMigrations(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*Product)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}

	overlays := []struct {
		model any
		name  string
	}{
		{(*CuratedTag)(nil), "curated_metadata"},
		{(*RejectedTag)(nil), "rejected_inferred_tags"},
		{(*AITag)(nil), "ai_generated_tags"},
		{(*CurationMark)(nil), "curation_status"},
	}
	for _, overlay := range overlays {
		if _, err := s.db.NewCreateTable().
			Model(overlay.model).
			IfNotExists().
			ForeignKey(`("product_id") REFERENCES "products" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("create %s table: %w", overlay.name, err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,
		`CREATE INDEX IF NOT EXISTS idx_products_parent ON products (parent_product_id) WHERE parent_product_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_products_tags_final ON products USING GIN (tags_final)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_curated_metadata_entry ON curated_metadata (product_id, field_name, field_value, curator)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_rejected_tags_entry ON rejected_inferred_tags (product_id, field_name, field_value)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_ai_tags_entry ON ai_generated_tags (product_id, field_name, field_value)`,
	}
	for _, stmt := range indexes {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// Upsert inserts or fully replaces the mutable columns of a product row.
// The raw sensor payload is only written when the stored value is still null,
// and updated_at is always assigned server-side so concurrent upserts resolve
// last write wins.
func (s *PostgresStore) Upsert(ctx context.Context, product *Product) error {
	if product == nil || product.ID == "" {
		return services.Wrap(services.ErrValidation, "catalog", "upsert", "product id is empty", nil)
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	if product.CurationStatus == "" {
		product.CurationStatus = StatusPending
	}

	_, err := s.db.NewInsert().
		Model(product).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("category = EXCLUDED.category").
		Set("source_url = EXCLUDED.source_url").
		Set("price_cents = EXCLUDED.price_cents").
		Set("original_price_cents = EXCLUDED.original_price_cents").
		Set("currency = EXCLUDED.currency").
		Set("description = EXCLUDED.description").
		Set("materials = EXCLUDED.materials").
		Set("fit = EXCLUDED.fit").
		Set("composition = EXCLUDED.composition").
		Set("sizes = EXCLUDED.sizes").
		Set("size_availability = EXCLUDED.size_availability").
		Set("colors = EXCLUDED.colors").
		Set("color = EXCLUDED.color").
		Set("parent_product_id = EXCLUDED.parent_product_id").
		Set("image_paths = EXCLUDED.image_paths").
		Set("tags_ai_raw = COALESCE(p.tags_ai_raw, EXCLUDED.tags_ai_raw)").
		Set("tags_final = EXCLUDED.tags_final").
		Set("curation_status = EXCLUDED.curation_status").
		Set("policy_version = EXCLUDED.policy_version").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return services.Wrap(services.ErrStoreUnavailable, "catalog", "upsert", product.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Product, error) {
	product := new(Product)
	err := s.db.NewSelect().Model(product).Where("p.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, services.Wrap(services.ErrStoreUnavailable, "catalog", "get", id, err)
	}
	return product, nil
}

func (s *PostgresStore) ListByCategory(ctx context.Context, category string) ([]*Product, error) {
	var products []*Product
	err := s.db.NewSelect().
		Model(&products).
		Where("p.category = ?", category).
		Order("p.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "catalog", "list", category, err)
	}
	return products, nil
}

// Delete removes a product row. Overlay rows go with it via cascade.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*Product)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return services.Wrap(services.ErrStoreUnavailable, "catalog", "delete", id, err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		ByCategory: map[string]int{},
		ByStatus:   map[CurationStatus]int{},
	}

	var categoryRows []struct {
		Category string `bun:"category"`
		Count    int    `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*Product)(nil)).
		ColumnExpr("category, count(*) AS count").
		Group("category").
		Scan(ctx, &categoryRows)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrStoreUnavailable, "catalog", "stats", "count by category", err)
	}
	for _, row := range categoryRows {
		stats.ByCategory[row.Category] = row.Count
		stats.Products += row.Count
	}

	var statusRows []struct {
		Status CurationStatus `bun:"curation_status"`
		Count  int            `bun:"count"`
	}
	err = s.db.NewSelect().
		Model((*Product)(nil)).
		ColumnExpr("curation_status, count(*) AS count").
		Group("curation_status").
		Scan(ctx, &statusRows)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrStoreUnavailable, "catalog", "stats", "count by status", err)
	}
	for _, row := range statusRows {
		stats.ByStatus[row.Status] = row.Count
	}

	variants, err := s.db.NewSelect().
		Model((*Product)(nil)).
		Where("parent_product_id IS NOT NULL").
		Count(ctx)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrStoreUnavailable, "catalog", "stats", "count variants", err)
	}
	stats.Variants = variants
	stats.Parents = stats.Products - stats.Variants
	return stats, nil
}

func (s *PostgresStore) AddCuratedTag(ctx context.Context, entry *CuratedTag) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NewInsert().
		Model(entry).
		On("CONFLICT (product_id, field_name, field_value, curator) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return services.Wrap(services.ErrStoreUnavailable, "catalog", "curated-tag", entry.ProductID, err)
	}
	return nil
}

func (s *PostgresStore) AddRejectedTag(ctx context.Context, entry *RejectedTag) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NewInsert().
		Model(entry).
		On("CONFLICT (product_id, field_name, field_value) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return services.Wrap(services.ErrStoreUnavailable, "catalog", "rejected-tag", entry.ProductID, err)
	}
	return nil
}

func (s *PostgresStore) AddAITag(ctx context.Context, entry *AITag) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NewInsert().
		Model(entry).
		On("CONFLICT (product_id, field_name, field_value) DO UPDATE").
		Set("model_id = EXCLUDED.model_id").
		Set("confidence = EXCLUDED.confidence").
		Set("reasoning = EXCLUDED.reasoning").
		Exec(ctx)
	if err != nil {
		return services.Wrap(services.ErrStoreUnavailable, "catalog", "ai-tag", entry.ProductID, err)
	}
	return nil
}

func (s *PostgresStore) SetCurationMark(ctx context.Context, mark *CurationMark) error {
	if mark.ReviewedAt.IsZero() {
		mark.ReviewedAt = time.Now().UTC()
	}
	_, err := s.db.NewInsert().
		Model(mark).
		On("CONFLICT (product_id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("curator = EXCLUDED.curator").
		Set("reviewed_at = EXCLUDED.reviewed_at").
		Exec(ctx)
	if err != nil {
		return services.Wrap(services.ErrStoreUnavailable, "catalog", "curation-mark", mark.ProductID, err)
	}
	return nil
}

func (s *PostgresStore) CuratedTags(ctx context.Context, productID string) ([]CuratedTag, error) {
	var entries []CuratedTag
	err := s.db.NewSelect().
		Model(&entries).
		Where("cm.product_id = ?", productID).
		Order("cm.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "catalog", "curated-tags", productID, err)
	}
	return entries, nil
}

func (s *PostgresStore) RejectedTags(ctx context.Context, productID string) ([]RejectedTag, error) {
	var entries []RejectedTag
	err := s.db.NewSelect().
		Model(&entries).
		Where("rt.product_id = ?", productID).
		Order("rt.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "catalog", "rejected-tags", productID, err)
	}
	return entries, nil
}

func (s *PostgresStore) AITags(ctx context.Context, productID string) ([]AITag, error) {
	var entries []AITag
	err := s.db.NewSelect().
		Model(&entries).
		Where("at.product_id = ?", productID).
		Order("at.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "catalog", "ai-tags", productID, err)
	}
	return entries, nil
}

func (s *PostgresStore) CurationMarkFor(ctx context.Context, productID string) (*CurationMark, error) {
	mark := new(CurationMark)
	err := s.db.NewSelect().Model(mark).Where("cs.product_id = ?", productID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrStoreUnavailable, "catalog", "curation-mark", productID, err)
	}
	return mark, nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ Store = (*PostgresStore)(nil)
