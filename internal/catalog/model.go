package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CurationStatus tracks how far a product has moved through human review.
type CurationStatus string

const (
	StatusPending     CurationStatus = "pending"
	StatusNeedsReview CurationStatus = "needs_review"
	StatusNeedsFix    CurationStatus = "needs_fix"
	StatusApproved    CurationStatus = "approved"
)

// Tag categories used as keys in raw sensor payloads and overlay field names.
const (
	FieldStyleIdentity = "style_identity"
	FieldSilhouette    = "silhouette"
	FieldContext       = "context"
	FieldPattern       = "pattern"
	FieldConstruction  = "construction"
	FieldLayerRole     = "layer_role"
	FieldFormality     = "formality"
	FieldWeight        = "weight"
	FieldFit           = "fit"
	FieldShoeType      = "shoe_type"
	FieldShoeProfile   = "shoe_profile"
	FieldShoeClosure   = "shoe_closure"
)

// TagScore is one raw tag suggestion with its model confidence.
type TagScore struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// RawTagPayload maps a tag category to the scored values a sensor emitted for
// it. The payload is stored verbatim and never rewritten after first write;
// policy reruns read it and regenerate the canonical payload instead.
type RawTagPayload map[string][]TagScore

// Clone returns a deep copy so callers can mutate without aliasing the stored
// payload.
func (p RawTagPayload) Clone() RawTagPayload {
	if p == nil {
		return nil
	}
	out := make(RawTagPayload, len(p))
	for category, scores := range p {
		cp := make([]TagScore, len(scores))
		copy(cp, scores)
		out[category] = cp
	}
	return out
}

// CanonicalTags is the thresholded, cap-limited tag set consumed downstream.
// Confidence scores never appear here.
type CanonicalTags struct {
	StyleIdentity []string `json:"style_identity,omitempty"`
	Silhouette    string   `json:"silhouette,omitempty"`
	Context       []string `json:"context,omitempty"`
	Pattern       string   `json:"pattern,omitempty"`
	Construction  []string `json:"construction,omitempty"`
	LayerRole     string   `json:"layer_role,omitempty"`
	Formality     string   `json:"formality,omitempty"`
	Weight        string   `json:"weight,omitempty"`
	ShoeType      string   `json:"shoe_type,omitempty"`
	ShoeProfile   string   `json:"shoe_profile,omitempty"`
	ShoeClosure   string   `json:"shoe_closure,omitempty"`
	PolicyVersion string   `json:"policy_version"`
}

// IsZero reports whether no canonical values survived policy application.
func (t CanonicalTags) IsZero() bool {
	return len(t.StyleIdentity) == 0 && t.Silhouette == "" &&
		len(t.Context) == 0 && t.Pattern == "" && len(t.Construction) == 0 &&
		t.LayerRole == "" && t.Formality == "" && t.Weight == "" &&
		t.ShoeType == "" && t.ShoeProfile == "" && t.ShoeClosure == ""
}

// CompositionPart is one material share parsed from source composition text.
type CompositionPart struct {
	Material string  `json:"material"`
	Percent  float64 `json:"percent"`
}

// Product is the canonical catalog record. Variant rows carry a non-empty
// Color and point at their parent through ParentProductID; parent rows carry
// the full Colors list and an empty Color.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID                 string            `bun:"id,pk" json:"id"`
	Name               string            `bun:"name,notnull" json:"name"`
	Category           string            `bun:"category,notnull" json:"category"`
	SourceURL          string            `bun:"source_url,notnull" json:"source_url"`
	PriceCents         int64             `bun:"price_cents,notnull" json:"price_cents"`
	OriginalPriceCents int64             `bun:"original_price_cents" json:"original_price_cents,omitempty"`
	Currency           string            `bun:"currency,notnull" json:"currency"`
	Description        string            `bun:"description" json:"description,omitempty"`
	Materials          []string          `bun:"materials,type:jsonb" json:"materials,omitempty"`
	Fit                string            `bun:"fit" json:"fit,omitempty"`
	Composition        []CompositionPart `bun:"composition,type:jsonb" json:"composition,omitempty"`
	Sizes              []string          `bun:"sizes,type:jsonb" json:"sizes,omitempty"`
	SizeAvailability   map[string]bool   `bun:"size_availability,type:jsonb" json:"size_availability,omitempty"`
	Colors             []string          `bun:"colors,type:jsonb" json:"colors,omitempty"`
	Color              string            `bun:"color,nullzero" json:"color,omitempty"`
	ParentProductID    string            `bun:"parent_product_id,nullzero" json:"parent_product_id,omitempty"`
	ImagePaths         []string          `bun:"image_paths,type:jsonb" json:"image_paths,omitempty"`
	TagsAIRaw          RawTagPayload     `bun:"tags_ai_raw,type:jsonb" json:"tags_ai_raw,omitempty"`
	TagsFinal          *CanonicalTags    `bun:"tags_final,type:jsonb" json:"tags_final,omitempty"`
	CurationStatus     CurationStatus    `bun:"curation_status,notnull,default:'pending'" json:"curation_status"`
	PolicyVersion      string            `bun:"policy_version" json:"policy_version,omitempty"`
	CreatedAt          time.Time         `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt          time.Time         `bun:"updated_at,notnull,default:now()" json:"updated_at"`
}

// IsVariant reports whether the row is a per-color expansion of a parent row.
func (p *Product) IsVariant() bool {
	return p.Color != "" && p.ParentProductID != ""
}

// CuratedTag is an explicit human tag assertion. Append-only; a curated value
// never modifies the inferred or AI value it overrides.
type CuratedTag struct {
	bun.BaseModel `bun:"table:curated_metadata,alias:cm"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	ProductID  string    `bun:"product_id,notnull" json:"product_id"`
	FieldName  string    `bun:"field_name,notnull" json:"field_name"`
	FieldValue string    `bun:"field_value,notnull" json:"field_value"`
	Curator    string    `bun:"curator,notnull" json:"curator"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:now()" json:"created_at"`
}

// RejectedTag records that a curator disputes an inferred or AI value. The
// value stays in the product record; rejection is display-time suppression
// plus retraining signal, never deletion.
type RejectedTag struct {
	bun.BaseModel `bun:"table:rejected_inferred_tags,alias:rt"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	ProductID  string    `bun:"product_id,notnull" json:"product_id"`
	FieldName  string    `bun:"field_name,notnull" json:"field_name"`
	FieldValue string    `bun:"field_value,notnull" json:"field_value"`
	Reasoning  string    `bun:"reasoning" json:"reasoning,omitempty"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:now()" json:"created_at"`
}

// AITag is one vision-model tag suggestion stored per product and field.
type AITag struct {
	bun.BaseModel `bun:"table:ai_generated_tags,alias:at"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	ProductID  string    `bun:"product_id,notnull" json:"product_id"`
	FieldName  string    `bun:"field_name,notnull" json:"field_name"`
	FieldValue string    `bun:"field_value,notnull" json:"field_value"`
	ModelID    string    `bun:"model_id" json:"model_id,omitempty"`
	Confidence float64   `bun:"confidence,notnull" json:"confidence"`
	Reasoning  string    `bun:"reasoning" json:"reasoning,omitempty"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:now()" json:"created_at"`
}

// CurationMark records that a curator finished reviewing a product. At most
// one row per product.
type CurationMark struct {
	bun.BaseModel `bun:"table:curation_status,alias:cs"`

	ProductID  string         `bun:"product_id,pk" json:"product_id"`
	Status     CurationStatus `bun:"status,notnull" json:"status"`
	Curator    string         `bun:"curator" json:"curator,omitempty"`
	ReviewedAt time.Time      `bun:"reviewed_at,notnull,default:now()" json:"reviewed_at"`
}

// Stats summarizes catalog contents for operator commands.
type Stats struct {
	Products   int
	Parents    int
	Variants   int
	ByCategory map[string]int
	ByStatus   map[CurationStatus]int
}
