package testsupport

import (
	"context"

	"refit/internal/tagging"
)

// StaticSuggester returns a fixed suggestion set for every product. Use it in
// tests that need a deterministic vision-model stand-in.
type StaticSuggester struct {
	Suggestions []tagging.Suggestion
	Err         error
}

func (s *StaticSuggester) SuggestTags(_ context.Context, _ tagging.Input) ([]tagging.Suggestion, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]tagging.Suggestion, len(s.Suggestions))
	copy(out, s.Suggestions)
	return out, nil
}

var _ tagging.Suggester = (*StaticSuggester)(nil)
