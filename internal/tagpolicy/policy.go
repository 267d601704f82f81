package tagpolicy

import (
	"sort"

	"refit/internal/catalog"
	"refit/internal/config"
)

// SuppressedTag records one raw value the policy dropped and why.
type SuppressedTag struct {
	Field      string  `json:"field"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// AppliedDefault records a fallback value used for a required field.
type AppliedDefault struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Result is the full outcome of one policy application.
type Result struct {
	Tags       catalog.CanonicalTags
	Status     catalog.CurationStatus
	Reasons    []string
	Suppressed []SuppressedTag
	Defaults   []AppliedDefault
}

// Input carries the product context the policy rules are conditioned on.
type Input struct {
	Category    string
	ProductName string
}

// Engine applies configured thresholds and cardinality caps to raw payloads.
type Engine struct {
	thresholds config.Policy
	version    string
}

// New builds an Engine from configuration.
func New(cfg *config.Config) *Engine {
	version := cfg.Policy.Version
	if version == "" {
		version = config.DefaultPolicyVersion
	}
	return &Engine{thresholds: cfg.Policy, version: version}
}

// Version returns the policy version stamped on canonical payloads.
func (e *Engine) Version() string {
	return e.version
}

// Apply thresholds a raw payload into the canonical tag set. A value whose
// confidence equals a threshold is retained; anything below is dropped and
// recorded as suppressed. The result carries the curation status the product
// should take and the version stamp of the rules used.
func (e *Engine) Apply(raw catalog.RawTagPayload, input Input) Result {
	kind := KindOf(input.Category)
	res := Result{Status: catalog.StatusApproved}
	res.Tags.PolicyVersion = e.version

	// Layer role for tops comes from garment keywords, not confidence.
	if kind.isTop() {
		if role := layerRoleFor(input.ProductName, input.Category); role != "" {
			res.Tags.LayerRole = role
		} else {
			res.addReason("missing_layer_role")
			res.Tags.LayerRole = "base"
			res.Defaults = append(res.Defaults, AppliedDefault{
				Field: catalog.FieldLayerRole, Value: "base", Reason: "could_not_determine_from_name",
			})
		}
	}

	// Style identity: top 1-2 by confidence, required.
	styles := res.selectCapped(raw[catalog.FieldStyleIdentity], catalog.FieldStyleIdentity,
		styleIdentityTags, e.thresholds.StyleIdentityMin, 2)
	for _, score := range styles {
		res.Tags.StyleIdentity = append(res.Tags.StyleIdentity, score.Value)
		if score.Confidence < e.thresholds.StyleIdentityAuto {
			res.addReason("style_identity_low_confidence")
		}
	}
	if len(res.Tags.StyleIdentity) == 0 {
		res.addReason("missing_style_identity")
	}

	// Formality: single scalar, defaulted when nothing survives.
	if score, ok := res.selectScalar(raw[catalog.FieldFormality], catalog.FieldFormality,
		formalityTags, e.thresholds.FormalityMin); ok {
		res.Tags.Formality = score.Value
		if score.Confidence < e.thresholds.FormalityAuto {
			res.addReason("formality_low_confidence")
		}
	} else {
		res.Tags.Formality = "casual"
		res.Defaults = append(res.Defaults, AppliedDefault{
			Field: catalog.FieldFormality, Value: "casual", Reason: "default_fallback",
		})
	}

	// Weight: single optional scalar, omitted when below threshold.
	if score, ok := res.selectScalar(raw[catalog.FieldWeight], catalog.FieldWeight,
		weightTags, e.thresholds.WeightMin); ok {
		res.Tags.Weight = score.Value
	}

	// Silhouette: single required value for apparel, vocabulary depends on
	// whether the garment is a bottom.
	if !kind.isShoes() {
		vocab := silhouetteUpperTags
		if kind.isBottom() {
			vocab = silhouetteBottomTags
		}
		if score, ok := res.selectScalar(raw[catalog.FieldSilhouette], catalog.FieldSilhouette,
			vocab, e.thresholds.SilhouetteMin); ok {
			res.Tags.Silhouette = score.Value
			if score.Confidence < e.thresholds.SilhouetteAuto {
				res.addReason("silhouette_low_confidence")
			}
		} else {
			fallback := "relaxed"
			if kind.isBottom() {
				fallback = "straight"
			}
			res.Tags.Silhouette = fallback
			res.addReason("missing_silhouette")
			res.Defaults = append(res.Defaults, AppliedDefault{
				Field: catalog.FieldSilhouette, Value: fallback, Reason: "required_missing_or_suppressed",
			})
		}
	}

	// Context: top 0-2, optional.
	for _, score := range res.selectCapped(raw[catalog.FieldContext], catalog.FieldContext,
		contextTags, e.thresholds.ContextMin, 2) {
		res.Tags.Context = append(res.Tags.Context, score.Value)
	}

	// Construction: top 0-2, optional, vocabulary depends on category kind.
	if !kind.isShoes() {
		vocab := constructionUpperTags
		if kind.isBottom() {
			vocab = constructionBottomTags
		}
		for _, score := range res.selectCapped(raw[catalog.FieldConstruction], catalog.FieldConstruction,
			vocab, e.thresholds.ConstructionMin, 2) {
			res.Tags.Construction = append(res.Tags.Construction, score.Value)
		}
	}

	// Pattern: top 0-1, optional.
	if score, ok := res.selectScalar(raw[catalog.FieldPattern], catalog.FieldPattern,
		patternTags, e.thresholds.PatternMin); ok {
		res.Tags.Pattern = score.Value
	}

	if kind.isShoes() {
		e.applyShoeFields(raw, &res)
	}

	res.Status = statusFor(res.Reasons)
	return res
}

func (e *Engine) applyShoeFields(raw catalog.RawTagPayload, res *Result) {
	if score, ok := res.selectScalar(raw[catalog.FieldShoeType], catalog.FieldShoeType,
		shoeTypeTags, e.thresholds.ShoeTypeMin); ok {
		res.Tags.ShoeType = score.Value
	} else {
		res.Tags.ShoeType = "dress-shoes"
		res.addReason("missing_shoe_type")
		res.Defaults = append(res.Defaults, AppliedDefault{
			Field: catalog.FieldShoeType, Value: "dress-shoes", Reason: "required_missing_or_suppressed",
		})
	}

	if score, ok := res.selectScalar(raw[catalog.FieldShoeProfile], catalog.FieldShoeProfile,
		shoeProfileTags, e.thresholds.ShoeProfileMin); ok {
		res.Tags.ShoeProfile = score.Value
	} else {
		res.Tags.ShoeProfile = "standard"
		res.Defaults = append(res.Defaults, AppliedDefault{
			Field: catalog.FieldShoeProfile, Value: "standard", Reason: "default_fallback",
		})
	}

	if score, ok := res.selectScalar(raw[catalog.FieldShoeClosure], catalog.FieldShoeClosure,
		shoeClosureTags, e.thresholds.ShoeClosureMin); ok {
		res.Tags.ShoeClosure = score.Value
	}
}

// CheckVersion compares a stored product's policy stamp against the engine's
// version. An approved product with a stale stamp is never silently
// overwritten: it demotes to needs_review (or, when demotion is disabled,
// simply reports the mismatch so the caller can skip re-stamping).
func (e *Engine) CheckVersion(product *catalog.Product) (mismatch bool, demote bool) {
	if product == nil || product.PolicyVersion == "" || product.PolicyVersion == e.version {
		return false, false
	}
	if product.CurationStatus != catalog.StatusApproved {
		return true, false
	}
	return true, e.thresholds.DemoteApprovedOnVersionMismatch
}

// selectCapped filters scored values against a vocabulary and threshold, then
// keeps the strongest few. Sorting is stable so equal confidences keep their
// input order.
func (r *Result) selectCapped(scores []catalog.TagScore, field string, vocab tagSet, min float64, limit int) []catalog.TagScore {
	var eligible []catalog.TagScore
	for _, score := range scores {
		if !vocab.contains(score.Value) {
			r.suppress(field, score, "illegal_tag")
			r.addReason("illegal_tag_returned")
			continue
		}
		if score.Confidence < min {
			r.suppress(field, score, "below_threshold")
			continue
		}
		eligible = append(eligible, score)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Confidence > eligible[j].Confidence
	})
	for _, dropped := range eligible[minInt(limit, len(eligible)):] {
		r.suppress(field, dropped, "exceeds_cardinality")
	}
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible
}

// selectScalar picks the single highest-confidence legal value at or above
// the threshold. Losing candidates are recorded as suppressed.
func (r *Result) selectScalar(scores []catalog.TagScore, field string, vocab tagSet, min float64) (catalog.TagScore, bool) {
	selected := r.selectCapped(scores, field, vocab, min, 1)
	if len(selected) == 0 {
		return catalog.TagScore{}, false
	}
	return selected[0], true
}

func (r *Result) suppress(field string, score catalog.TagScore, reason string) {
	r.Suppressed = append(r.Suppressed, SuppressedTag{
		Field:      field,
		Value:      score.Value,
		Confidence: score.Confidence,
		Reason:     reason,
	})
}

func (r *Result) addReason(reason string) {
	for _, existing := range r.Reasons {
		if existing == reason {
			return
		}
	}
	r.Reasons = append(r.Reasons, reason)
}

func statusFor(reasons []string) catalog.CurationStatus {
	critical := map[string]bool{
		"missing_style_identity": true,
		"missing_shoe_type":      true,
	}
	review := map[string]bool{
		"style_identity_low_confidence": true,
		"silhouette_low_confidence":     true,
		"formality_low_confidence":      true,
		"illegal_tag_returned":          true,
		"missing_silhouette":            true,
		"missing_layer_role":            true,
	}
	status := catalog.StatusApproved
	for _, reason := range reasons {
		if critical[reason] {
			return catalog.StatusNeedsFix
		}
		if review[reason] {
			status = catalog.StatusNeedsReview
		}
	}
	return status
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
