package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and dry-run wiring. It
// mirrors the Postgres semantics: upserts preserve the first raw payload,
// overlay tuples are unique, and deleting a product drops its overlays.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]*Product
	curated  map[string][]CuratedTag
	rejected map[string][]RejectedTag
	aiTags   map[string][]AITag
	marks    map[string]*CurationMark
}

// NewMemoryStore returns an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: map[string]*Product{},
		curated:  map[string][]CuratedTag{},
		rejected: map[string][]RejectedTag{},
		aiTags:   map[string][]AITag{},
		marks:    map[string]*CurationMark{},
	}
}

func (s *MemoryStore) Upsert(_ context.Context, product *Product) error {
	if product == nil || product.ID == "" {
		return ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *product
	now := time.Now().UTC()
	if existing, ok := s.products[cp.ID]; ok {
		cp.CreatedAt = existing.CreatedAt
		if existing.TagsAIRaw != nil {
			cp.TagsAIRaw = existing.TagsAIRaw
		}
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	if cp.CurationStatus == "" {
		cp.CurationStatus = StatusPending
	}
	s.products[cp.ID] = &cp
	product.CreatedAt = cp.CreatedAt
	product.UpdatedAt = cp.UpdatedAt
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *product
	return &cp, nil
}

func (s *MemoryStore) ListByCategory(_ context.Context, category string) ([]*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Product
	for _, product := range s.products {
		if product.Category != category {
			continue
		}
		cp := *product
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	delete(s.curated, id)
	delete(s.rejected, id)
	delete(s.aiTags, id)
	delete(s.marks, id)
	return nil
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := Stats{
		ByCategory: map[string]int{},
		ByStatus:   map[CurationStatus]int{},
	}
	for _, product := range s.products {
		stats.Products++
		stats.ByCategory[product.Category]++
		stats.ByStatus[product.CurationStatus]++
		if product.IsVariant() {
			stats.Variants++
		}
	}
	stats.Parents = stats.Products - stats.Variants
	return stats, nil
}

func (s *MemoryStore) AddCuratedTag(_ context.Context, entry *CuratedTag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.curated[entry.ProductID] {
		if existing.FieldName == entry.FieldName && existing.FieldValue == entry.FieldValue && existing.Curator == entry.Curator {
			return nil
		}
	}
	cp := *entry
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.curated[entry.ProductID] = append(s.curated[entry.ProductID], cp)
	return nil
}

func (s *MemoryStore) AddRejectedTag(_ context.Context, entry *RejectedTag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rejected[entry.ProductID] {
		if existing.FieldName == entry.FieldName && existing.FieldValue == entry.FieldValue {
			return nil
		}
	}
	cp := *entry
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.rejected[entry.ProductID] = append(s.rejected[entry.ProductID], cp)
	return nil
}

func (s *MemoryStore) AddAITag(_ context.Context, entry *AITag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.aiTags[entry.ProductID]
	for i, existing := range entries {
		if existing.FieldName == entry.FieldName && existing.FieldValue == entry.FieldValue {
			entries[i].ModelID = entry.ModelID
			entries[i].Confidence = entry.Confidence
			entries[i].Reasoning = entry.Reasoning
			return nil
		}
	}
	cp := *entry
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.aiTags[entry.ProductID] = append(entries, cp)
	return nil
}

func (s *MemoryStore) SetCurationMark(_ context.Context, mark *CurationMark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *mark
	if cp.ReviewedAt.IsZero() {
		cp.ReviewedAt = time.Now().UTC()
	}
	s.marks[mark.ProductID] = &cp
	return nil
}

func (s *MemoryStore) CuratedTags(_ context.Context, productID string) ([]CuratedTag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CuratedTag, len(s.curated[productID]))
	copy(out, s.curated[productID])
	return out, nil
}

func (s *MemoryStore) RejectedTags(_ context.Context, productID string) ([]RejectedTag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RejectedTag, len(s.rejected[productID]))
	copy(out, s.rejected[productID])
	return out, nil
}

func (s *MemoryStore) AITags(_ context.Context, productID string) ([]AITag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AITag, len(s.aiTags[productID]))
	copy(out, s.aiTags[productID])
	return out, nil
}

func (s *MemoryStore) CurationMarkFor(_ context.Context, productID string) (*CurationMark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mark, ok := s.marks[productID]
	if !ok {
		return nil, nil
	}
	cp := *mark
	return &cp, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
