// Package tagging defines the boundary to tag-suggestion providers. The
// pipeline and policy engine depend only on this contract; vision-model
// invocation lives outside this repository.
package tagging

import (
	"context"

	"refit/internal/catalog"
)

// Input describes one product for a suggestion provider.
type Input struct {
	ProductID   string
	Name        string
	Category    string
	Description string
	Materials   []string
	ImagePaths  []string
}

// Suggestion is one scored tag value from a provider.
type Suggestion struct {
	Field      string
	Value      string
	Confidence float64
	Reasoning  string
	ModelID    string
}

// Suggester produces raw tag suggestions for a product. Implementations must
// be safe for concurrent use.
type Suggester interface {
	SuggestTags(ctx context.Context, input Input) ([]Suggestion, error)
}

// Payload groups suggestions by field into the raw payload the policy engine
// consumes.
func Payload(suggestions []Suggestion) catalog.RawTagPayload {
	if len(suggestions) == 0 {
		return nil
	}
	payload := make(catalog.RawTagPayload)
	for _, s := range suggestions {
		payload[s.Field] = append(payload[s.Field], catalog.TagScore{
			Value:      s.Value,
			Confidence: s.Confidence,
			Reasoning:  s.Reasoning,
		})
	}
	return payload
}
