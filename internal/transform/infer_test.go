package transform_test

import (
	"testing"

	"refit/internal/transform"
)

func TestParsePriceCents(t *testing.T) {
	cases := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"79.95", 7995, false},
		{"79,95", 7995, false},
		{"79,95 €", 7995, false},
		{"$1,299.50", 129950, false},
		{"1.299,50", 129950, false},
		{"0", 0, false},
		{"", 0, true},
		{"free", 0, true},
		{"-5.00", 0, true},
	}
	for _, tc := range cases {
		got, err := transform.ParsePriceCents(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error, got %d", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %d cents, got %d", tc.input, tc.want, got)
		}
	}
}

func TestSlugifyFoldsDiacritics(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Navy", "navy"},
		{"Écru / Off White", "ecru-off-white"},
		{"Grün", "grun"},
		{"  Light   Blue  ", "light-blue"},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := transform.Slugify(tc.input); got != tc.want {
			t.Fatalf("Slugify(%q): expected %q, got %q", tc.input, tc.want, got)
		}
	}
}

func TestVariantIDIsDeterministic(t *testing.T) {
	first := transform.VariantID("4424-510-800", "Écru")
	second := transform.VariantID("4424-510-800", "Écru")
	if first != second {
		t.Fatalf("expected stable ids, got %q and %q", first, second)
	}
	if first != "4424-510-800-ecru" {
		t.Fatalf("unexpected id %q", first)
	}
	if got := transform.VariantID("p-1", "!!!"); got != "p-1" {
		t.Fatalf("expected parent id for empty slug, got %q", got)
	}
}

func TestParseComposition(t *testing.T) {
	parts := transform.ParseComposition("52% Cotton, 48% Polyester")
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %v", parts)
	}
	if parts[0].Material != "cotton" || parts[0].Percent != 52 {
		t.Fatalf("unexpected first part %+v", parts[0])
	}
	if parts[1].Material != "polyester" || parts[1].Percent != 48 {
		t.Fatalf("unexpected second part %+v", parts[1])
	}

	if parts := transform.ParseComposition("pure comfort"); parts != nil {
		t.Fatalf("expected nil for unparseable text, got %v", parts)
	}
	if parts := transform.ParseComposition("150% nonsense"); parts != nil {
		t.Fatalf("expected nil for out-of-range percent, got %v", parts)
	}
}

func TestInferFitFirstMatchWins(t *testing.T) {
	if fit := transform.InferFit("Slim Fit Jeans", "a relaxed feel"); fit != "slim" {
		t.Fatalf("expected slim, got %q", fit)
	}
	if fit := transform.InferFit("Plain Tee", "nothing notable"); fit != "" {
		t.Fatalf("expected no fit, got %q", fit)
	}
	if fit := transform.InferFit("Oversized Hoodie", ""); fit != "oversized" {
		t.Fatalf("expected oversized, got %q", fit)
	}
}

func TestInferWeight(t *testing.T) {
	score, ok := transform.InferWeight("Lightweight Jacket", "", nil)
	if !ok || score.Value != "light" {
		t.Fatalf("expected explicit light, got %+v ok=%v", score, ok)
	}

	score, ok = transform.InferWeight("Plain Jacket", "", []string{"100% Leather"})
	if !ok || score.Value != "heavy" {
		t.Fatalf("expected heavy from leather, got %+v ok=%v", score, ok)
	}
	if score.Confidence >= 0.8 {
		t.Fatalf("expected material inference below explicit confidence, got %f", score.Confidence)
	}

	if _, ok = transform.InferWeight("Plain Jacket", "", []string{"cotton"}); ok {
		t.Fatal("expected no weight inference for cotton")
	}
}

func TestInferStyleTags(t *testing.T) {
	tags := transform.InferStyleTags(
		"Basic Oversized Hoodie",
		"An everyday essential.",
		[]string{"Black"},
		[]string{"Cotton"},
		"tshirts",
		2995,
	)
	values := map[string]float64{}
	for _, tag := range tags {
		values[tag.Value] = tag.Confidence
	}
	if _, ok := values["minimal"]; !ok {
		t.Fatalf("expected minimal from 'basic', got %v", values)
	}
	if _, ok := values["streetwear"]; !ok {
		t.Fatalf("expected streetwear from 'oversized|hoodie', got %v", values)
	}
	if _, ok := values["casual"]; !ok {
		t.Fatalf("expected casual from 'everyday', got %v", values)
	}
	if values["minimal"] != 0.75 {
		t.Fatalf("expected name-match confidence for minimal, got %f", values["minimal"])
	}

	expensive := transform.InferStyleTags("Jacket", "", nil, nil, "jackets", 20000)
	found := false
	for _, tag := range expensive {
		if tag.Value == "premium" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected premium from price threshold, got %v", expensive)
	}
}

func TestInferFormality(t *testing.T) {
	formal := transform.InferFormality("Wool Suit", "tailored two piece", []string{"Charcoal"}, []string{"Worsted Wool"}, "suits", "tailored")
	if formal.Value != "formal" {
		t.Fatalf("expected formal for suit, got %+v", formal)
	}

	casual := transform.InferFormality("Graphic Hoodie", "relaxed drawstring hood", []string{"Bright Red"}, []string{"Jersey"}, "tshirts", "oversized")
	if casual.Value != "very_casual" {
		t.Fatalf("expected very_casual for hoodie, got %+v", casual)
	}

	baseline := transform.InferFormality("Overshirt", "", nil, nil, "jackets", "")
	if baseline.Value != "smart_casual" {
		t.Fatalf("expected smart_casual category baseline, got %+v", baseline)
	}
}
