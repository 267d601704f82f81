package tracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"refit/internal/config"
)

// Record is one tracked source item.
type Record struct {
	ProductID     string
	SourceURL     string
	Category      string
	Name          string
	PriceCents    int64
	FirstSeenAt   time.Time
	LastUpdatedAt time.Time
}

// Snapshot is the data recorded after a successful ingest.
type Snapshot struct {
	ProductID  string
	SourceURL  string
	Category   string
	Name       string
	PriceCents int64
}

// Stats summarizes tracked items for operator commands.
type Stats struct {
	Count      int
	ByCategory map[string]int
}

// Store manages the tracking cache backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the tracking database and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Tracking.Path
	if dbPath == "" {
		dbPath = filepath.Join(cfg.Paths.DataDir, "tracking.db")
	}
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure tracking directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// ShouldProcess reports whether the item needs ingesting. An existing record
// skips processing regardless of price drift; force always processes. Callers
// treat a returned error as "process anyway" so an unavailable cache never
// silently drops work.
func (s *Store) ShouldProcess(ctx context.Context, productID string, priceCents int64, force bool) (bool, error) {
	if force {
		return true, nil
	}
	_ = priceCents // price drift does not bypass the skip by default

	var exists int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tracked_products WHERE product_id = ?`, productID)
	if err := row.Scan(&exists); err != nil {
		return true, fmt.Errorf("check tracked product %s: %w", productID, err)
	}
	return exists == 0, nil
}

// RecordProcessed upserts the tracking record for a successfully ingested
// item, preserving the first-seen timestamp across re-ingests.
func (s *Store) RecordProcessed(ctx context.Context, snapshot Snapshot) error {
	if snapshot.ProductID == "" {
		return errors.New("tracking: product id is empty")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tracked_products (
            product_id, source_url, category, name, price_cents,
            first_seen_at, last_updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (product_id) DO UPDATE SET
            source_url = excluded.source_url,
            category = excluded.category,
            name = excluded.name,
            price_cents = excluded.price_cents,
            last_updated_at = excluded.last_updated_at`,
		snapshot.ProductID,
		snapshot.SourceURL,
		snapshot.Category,
		snapshot.Name,
		snapshot.PriceCents,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("record processed %s: %w", snapshot.ProductID, err)
	}
	return nil
}

// Get returns the record for a product id, or nil when untracked.
func (s *Store) Get(ctx context.Context, productID string) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT product_id, source_url, category, name, price_cents, first_seen_at, last_updated_at
         FROM tracked_products WHERE product_id = ?`,
		productID,
	)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tracked product %s: %w", productID, err)
	}
	return record, nil
}

// List returns all records ordered by last update, newest first.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT product_id, source_url, category, name, price_cents, first_seen_at, last_updated_at
         FROM tracked_products ORDER BY last_updated_at DESC, product_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list tracked products: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Clear removes every tracking record and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tracked_products`)
	if err != nil {
		return 0, fmt.Errorf("clear tracked products: %w", err)
	}
	return res.RowsAffected()
}

// Stats counts tracked items per category.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByCategory: map[string]int{}}
	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(1) FROM tracked_products GROUP BY category`)
	if err != nil {
		return Stats{}, fmt.Errorf("tracking stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return Stats{}, fmt.Errorf("scan tracking stats: %w", err)
		}
		stats.ByCategory[category] = count
		stats.Count += count
	}
	return stats, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var record Record
	var firstSeen, lastUpdated string
	if err := scanner.Scan(
		&record.ProductID,
		&record.SourceURL,
		&record.Category,
		&record.Name,
		&record.PriceCents,
		&firstSeen,
		&lastUpdated,
	); err != nil {
		return nil, err
	}
	record.FirstSeenAt = parseTimestamp(firstSeen)
	record.LastUpdatedAt = parseTimestamp(lastUpdated)
	return &record, nil
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed.UTC()
	}
	return time.Time{}
}
