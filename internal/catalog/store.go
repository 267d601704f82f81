package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a product id has no catalog row.
var ErrNotFound = errors.New("catalog: product not found")

// Store is the catalog persistence contract. Upsert is idempotent by product
// id and replaces all mutable columns; the raw sensor payload is written once
// and preserved on later upserts. Overlay writes are append-only and never
// touch the product row.
type Store interface {
	Upsert(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	ListByCategory(ctx context.Context, category string) ([]*Product, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (Stats, error)

	AddCuratedTag(ctx context.Context, entry *CuratedTag) error
	AddRejectedTag(ctx context.Context, entry *RejectedTag) error
	AddAITag(ctx context.Context, entry *AITag) error
	SetCurationMark(ctx context.Context, mark *CurationMark) error

	CuratedTags(ctx context.Context, productID string) ([]CuratedTag, error)
	RejectedTags(ctx context.Context, productID string) ([]RejectedTag, error)
	AITags(ctx context.Context, productID string) ([]AITag, error)
	CurationMarkFor(ctx context.Context, productID string) (*CurationMark, error)

	Close() error
}
