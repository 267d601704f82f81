package transform

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"refit/internal/catalog"
)

// Keyword inference turns listing text into low-confidence tag suggestions.
// The suggestions land in the raw payload next to any sensor output and go
// through the same policy thresholds; rule tables are ordered slices so the
// outcome is deterministic across runs.

// Confidence assigned per evidence source. Name matches outrank description
// matches, which outrank indirect hints.
const (
	confNameMatch        = 0.75
	confDescriptionMatch = 0.65
	confMaterialHint     = 0.60
	confCategoryHint     = 0.60
	confColorHint        = 0.55
	confPriceHint        = 0.55
	confWeightExplicit   = 0.80
	confWeightMaterial   = 0.60
	confFormalityGarment = 0.70
	confFormalityDefault = 0.55
)

type fitRule struct {
	value   string
	pattern *regexp.Regexp
}

var fitRules = []fitRule{
	{"slim", regexp.MustCompile(`(?i)\b(slim|skinny|fitted|tailored)\b`)},
	{"relaxed", regexp.MustCompile(`(?i)\b(relaxed|loose|easy)\b`)},
	{"wide", regexp.MustCompile(`(?i)\b(wide|wide[- ]?leg|wide[- ]?fit)\b`)},
	{"oversized", regexp.MustCompile(`(?i)\b(oversized|over[- ]?sized|boxy|loose[- ]?fit)\b`)},
	{"regular", regexp.MustCompile(`(?i)\b(regular|standard|classic)\b`)},
	{"cropped", regexp.MustCompile(`(?i)\b(cropped|crop)\b`)},
	{"straight", regexp.MustCompile(`(?i)\b(straight|straight[- ]?leg|straight[- ]?fit)\b`)},
	{"tapered", regexp.MustCompile(`(?i)\b(tapered|taper)\b`)},
	{"athletic", regexp.MustCompile(`(?i)\b(athletic|sport|active)\b`)},
	{"comfort", regexp.MustCompile(`(?i)\b(comfort|comfortable)\b`)},
}

// InferFit extracts a fit value from product name and description. The first
// matching rule wins.
func InferFit(name, description string) string {
	text := name + " " + description
	for _, rule := range fitRules {
		if rule.pattern.MatchString(text) {
			return rule.value
		}
	}
	return ""
}

type weightRule struct {
	value   string
	pattern *regexp.Regexp
}

var weightRules = []weightRule{
	{"light", regexp.MustCompile(`(?i)\b(light|lightweight|thin|sheer|breathable|summer|airy)\b`)},
	{"medium", regexp.MustCompile(`(?i)\b(medium[- ]?weight|mid[- ]?weight|regular[- ]?weight)\b`)},
	{"heavy", regexp.MustCompile(`(?i)\b(heavy|heavyweight|thick|warm|winter|fleece|wool|dense|brushed)\b`)},
}

var heavyMaterials = []string{"wool", "fleece", "denim", "leather", "down", "feather"}

var lightMaterials = []string{"linen", "silk", "mesh", "chiffon", "voile"}

// InferWeight extracts a garment weight suggestion from the listing text and
// material list. Explicit mentions win over material inference.
func InferWeight(name, description string, materials []string) (catalog.TagScore, bool) {
	text := name + " " + description + " " + strings.Join(materials, " ")
	for _, rule := range weightRules {
		if match := rule.pattern.FindString(text); match != "" {
			return catalog.TagScore{
				Value:      rule.value,
				Confidence: confWeightExplicit,
				Reasoning:  fmt.Sprintf("explicit mention %q in product text", strings.ToLower(match)),
			}, true
		}
	}

	materialsLower := strings.ToLower(strings.Join(materials, " "))
	for _, material := range heavyMaterials {
		if strings.Contains(materialsLower, material) {
			return catalog.TagScore{
				Value:      "heavy",
				Confidence: confWeightMaterial,
				Reasoning:  fmt.Sprintf("material %q implies a heavier fabric", material),
			}, true
		}
	}
	for _, material := range lightMaterials {
		if strings.Contains(materialsLower, material) {
			return catalog.TagScore{
				Value:      "light",
				Confidence: confWeightMaterial,
				Reasoning:  fmt.Sprintf("material %q implies a lighter fabric", material),
			}, true
		}
	}
	return catalog.TagScore{}, false
}

type styleRule struct {
	tag                 string
	namePattern         *regexp.Regexp
	descriptionPattern  *regexp.Regexp
	colorHints          []string
	materialHints       []string
	categoryHints       []string
	priceThresholdCents int64
}

var styleRules = []styleRule{
	{
		tag:                "minimal",
		namePattern:        regexp.MustCompile(`(?i)\b(basic|essential|simple|plain)\b`),
		descriptionPattern: regexp.MustCompile(`(?i)\b(simple|clean|minimal|essential)\b`),
		colorHints:         []string{"white", "black", "grey", "gray", "navy", "beige"},
	},
	{
		tag:                "modern",
		namePattern:        regexp.MustCompile(`(?i)\b(modern|contemporary|tech|technical)\b`),
		descriptionPattern: regexp.MustCompile(`(?i)\b(modern|innovative|technical|performance)\b`),
	},
	{
		tag:                "classic",
		namePattern:        regexp.MustCompile(`(?i)\b(classic|traditional|timeless|heritage)\b`),
		descriptionPattern: regexp.MustCompile(`(?i)\b(classic|traditional|timeless)\b`),
	},
	{
		tag:                "casual",
		namePattern:        regexp.MustCompile(`(?i)\b(casual|everyday|relaxed|jogger)\b`),
		descriptionPattern: regexp.MustCompile(`(?i)\b(casual|everyday|comfortable|easy)\b`),
		categoryHints:      []string{"t-shirts", "tshirts", "joggers"},
	},
	{
		tag:                "formal",
		namePattern:        regexp.MustCompile(`(?i)\b(suit|formal|dress|tailored|blazer)\b`),
		descriptionPattern: regexp.MustCompile(`(?i)\b(formal|elegant|sophisticated|tailored)\b`),
	},
	{
		tag:                "sporty",
		namePattern:        regexp.MustCompile(`(?i)\b(sport|athletic|active|training|running)\b`),
		descriptionPattern: regexp.MustCompile(`(?i)\b(sport|athletic|active|performance|moisture)\b`),
		materialHints:      []string{"polyester", "nylon", "spandex", "elastane"},
	},
	{
		tag:                "streetwear",
		namePattern:        regexp.MustCompile(`(?i)\b(street|urban|graphic|oversized|hoodie)\b`),
		descriptionPattern: regexp.MustCompile(`(?i)\b(street|urban|bold)\b`),
	},
	{
		tag:                "layering",
		namePattern:        regexp.MustCompile(`(?i)\b(layer|layering|cardigan|vest|gilet)\b`),
		descriptionPattern: regexp.MustCompile(`(?i)\b(layer|layering|versatile)\b`),
	},
	{
		tag:                 "premium",
		namePattern:         regexp.MustCompile(`(?i)\b(premium|luxury|limited|edition|leather)\b`),
		descriptionPattern:  regexp.MustCompile(`(?i)\b(premium|luxury|high[- ]?quality|exclusive)\b`),
		priceThresholdCents: 15000,
	},
	{
		tag:                "sustainable",
		namePattern:        regexp.MustCompile(`(?i)\b(eco|sustainable|organic|recycled)\b`),
		descriptionPattern: regexp.MustCompile(`(?i)\b(sustainable|organic|recycled|eco[- ]?friendly)\b`),
		materialHints:      []string{"organic", "recycled"},
	},
	{
		tag:                "water-resistant",
		namePattern:        regexp.MustCompile(`(?i)\b(water[- ]?repellent|water[- ]?resistant|waterproof)\b`),
		descriptionPattern: regexp.MustCompile(`(?i)\b(water[- ]?repellent|water[- ]?resistant|waterproof)\b`),
	},
	{
		tag:                "textured",
		namePattern:        regexp.MustCompile(`(?i)\b(textured|ribbed|knit|waffle|quilted)\b`),
		descriptionPattern: regexp.MustCompile(`(?i)\b(textured|ribbed|knit|waffle|quilted)\b`),
	},
}

// InferStyleTags suggests style identity values from listing attributes. Each
// rule contributes at most one suggestion; evidence closer to the product name
// scores higher.
func InferStyleTags(name, description string, colors, materials []string, category string, priceCents int64) []catalog.TagScore {
	colorsLower := strings.ToLower(strings.Join(colors, " "))
	materialsLower := strings.ToLower(strings.Join(materials, " "))
	categoryLower := strings.ToLower(category)

	var tags []catalog.TagScore
	for _, rule := range styleRules {
		if rule.namePattern != nil {
			if match := rule.namePattern.FindString(name); match != "" {
				tags = append(tags, catalog.TagScore{
					Value:      rule.tag,
					Confidence: confNameMatch,
					Reasoning:  fmt.Sprintf("name contains %q", strings.ToLower(match)),
				})
				continue
			}
		}
		if rule.descriptionPattern != nil {
			if match := rule.descriptionPattern.FindString(description); match != "" {
				tags = append(tags, catalog.TagScore{
					Value:      rule.tag,
					Confidence: confDescriptionMatch,
					Reasoning:  fmt.Sprintf("description mentions %q", strings.ToLower(match)),
				})
				continue
			}
		}
		if hint := firstContained(colorsLower, rule.colorHints); hint != "" {
			tags = append(tags, catalog.TagScore{
				Value:      rule.tag,
				Confidence: confColorHint,
				Reasoning:  fmt.Sprintf("color %q suggests this style", hint),
			})
			continue
		}
		if hint := firstContained(materialsLower, rule.materialHints); hint != "" {
			tags = append(tags, catalog.TagScore{
				Value:      rule.tag,
				Confidence: confMaterialHint,
				Reasoning:  fmt.Sprintf("material %q is typical for this style", hint),
			})
			continue
		}
		if hint := firstContained(categoryLower, rule.categoryHints); hint != "" {
			tags = append(tags, catalog.TagScore{
				Value:      rule.tag,
				Confidence: confCategoryHint,
				Reasoning:  fmt.Sprintf("category %q is typically this style", category),
			})
			continue
		}
		if rule.priceThresholdCents > 0 && priceCents >= rule.priceThresholdCents {
			tags = append(tags, catalog.TagScore{
				Value:      rule.tag,
				Confidence: confPriceHint,
				Reasoning:  fmt.Sprintf("price exceeds %d cents", rule.priceThresholdCents),
			})
		}
	}
	return tags
}

func firstContained(haystack string, hints []string) string {
	for _, hint := range hints {
		if strings.Contains(haystack, hint) {
			return hint
		}
	}
	return ""
}

type weightedKeyword struct {
	keyword string
	score   float64
}

// Garment types and their base formality scores on the 1 to 5 scale.
var garmentFormality = []weightedKeyword{
	{"tuxedo", 5}, {"dinner jacket", 5}, {"morning coat", 5}, {"tailcoat", 5},
	{"dress shoes", 5}, {"suit", 5},
	{"dress shirt", 4}, {"sport coat", 4}, {"dress pants", 4}, {"monk strap", 4},
	{"oxford shoes", 4}, {"blazer", 4}, {"trousers", 4},
	{"button-down", 3}, {"oxford", 3}, {"cardigan", 3}, {"sweater", 3},
	{"loafer", 3}, {"derby", 3}, {"chino", 3}, {"bomber", 3},
	{"t-shirt", 2}, {"tshirt", 2}, {"tee", 2}, {"polo", 2}, {"jeans", 2},
	{"sneakers", 2}, {"chinos", 2}, {"cargo", 2}, {"parka", 2},
	{"jogger", 1}, {"sweatpants", 1}, {"hoodie", 1}, {"sweatshirt", 1},
	{"tank", 1}, {"shorts", 1}, {"flip flops", 1},
}

var categoryFormality = []weightedKeyword{
	{"t-shirts", 2}, {"tshirts", 2}, {"trousers", 4}, {"blazers", 4},
	{"suits", 5}, {"pants", 3}, {"jackets", 3}, {"outerwear", 3},
	{"sweaters", 3}, {"shirts", 3}, {"shoes", 3},
}

var colorFormality = []weightedKeyword{
	{"black", 0.5}, {"charcoal", 0.5}, {"navy", 0.3}, {"dark grey", 0.3},
	{"dark gray", 0.3}, {"midnight", 0.3},
	{"brown", -0.2}, {"tan", -0.2}, {"beige", -0.1}, {"khaki", -0.2},
	{"light blue", -0.2}, {"pastel", -0.3}, {"bright", -0.5}, {"red", -0.3},
	{"yellow", -0.4}, {"orange", -0.4}, {"pink", -0.3}, {"green", -0.2},
	{"turquoise", -0.3}, {"coral", -0.3},
}

var materialFormality = []weightedKeyword{
	{"patent leather", 0.5}, {"silk", 0.5}, {"cashmere", 0.4}, {"worsted wool", 0.4},
	{"worsted", 0.3}, {"satin", 0.3}, {"velvet", 0.3}, {"calf leather", 0.3},
	{"merino", 0.2}, {"wool", 0.2}, {"leather", 0.2},
	{"linen", -0.3}, {"denim", -0.4}, {"canvas", -0.3}, {"corduroy", -0.2},
	{"tweed", -0.2}, {"flannel", -0.1}, {"fleece", -0.4}, {"jersey", -0.3},
	{"terry", -0.4}, {"nylon", -0.3}, {"polyester", -0.2}, {"mesh", -0.4},
	{"suede", -0.2}, {"nubuck", -0.2},
}

var patternFormality = []weightedKeyword{
	{"solid", 0.2}, {"plain", 0.2}, {"pinstripe", 0.1},
	{"striped", -0.1}, {"stripes", -0.1}, {"checked", -0.2}, {"check", -0.2},
	{"plaid", -0.3}, {"houndstooth", -0.2}, {"graphic", -0.4}, {"printed", -0.3},
	{"print", -0.3}, {"floral", -0.3}, {"tropical", -0.4}, {"camo", -0.5},
	{"tie-dye", -0.5},
}

var structureFormality = []weightedKeyword{
	{"padded shoulders", 0.2}, {"peak lapel", 0.4}, {"peaked lapel", 0.4},
	{"jetted pocket", 0.3}, {"welt pocket", 0.3}, {"french cuff", 0.3},
	{"double cuff", 0.3}, {"cufflinks", 0.3}, {"wing collar", 0.4},
	{"structured", 0.3}, {"tailored", 0.4}, {"lined", 0.2},
	{"unstructured", -0.2}, {"unlined", -0.2}, {"patch pocket", -0.3},
	{"elastic", -0.3}, {"drawstring", -0.4}, {"zipper", -0.1}, {"zip", -0.1},
}

var fitFormality = map[string]float64{
	"slim": 0.2, "tailored": 0.3, "fitted": 0.2,
	"relaxed": -0.2, "wide": -0.1, "oversized": -0.3,
	"athletic": -0.2, "comfort": -0.2,
}

var formalityLabels = [...]string{
	1: "very_casual",
	2: "casual",
	3: "smart_casual",
	4: "business_casual",
	5: "formal",
}

// InferFormality scores a product on the classic 1 to 5 menswear formality
// scale and returns the bucket label. The score starts from the garment type
// (or category when the text names no garment) and shifts with color,
// material, pattern, structure, and fit signals before rounding.
func InferFormality(name, description string, colors, materials []string, category, fit string) catalog.TagScore {
	text := strings.ToLower(name + " " + description)
	colorsLower := strings.ToLower(strings.Join(colors, " "))
	materialsLower := strings.ToLower(strings.Join(materials, " "))

	score := 3.0
	confidence := confFormalityDefault
	garmentFound := false
	for _, garment := range garmentFormality {
		if strings.Contains(text, garment.keyword) {
			score = garment.score
			confidence = confFormalityGarment
			garmentFound = true
			break
		}
	}
	if !garmentFound && category != "" {
		categoryLower := strings.ToLower(category)
		for _, cat := range categoryFormality {
			if strings.Contains(categoryLower, cat.keyword) {
				score = cat.score
				break
			}
		}
	}

	var colorAdjustment float64
	for _, color := range colorFormality {
		if strings.Contains(colorsLower, color.keyword) {
			if color.score > 0 {
				colorAdjustment = math.Max(colorAdjustment, color.score)
			} else {
				colorAdjustment = math.Min(colorAdjustment, color.score)
			}
		}
	}
	score += colorAdjustment

	for _, material := range materialFormality {
		if strings.Contains(materialsLower, material.keyword) {
			score += material.score
		}
	}

	for _, pattern := range patternFormality {
		if strings.Contains(text, pattern.keyword) {
			score += pattern.score
			break
		}
	}

	for _, structure := range structureFormality {
		if strings.Contains(text, structure.keyword) {
			score += structure.score
		}
	}

	if adj, ok := fitFormality[fit]; ok {
		score += adj
	}

	bucket := int(math.Round(score))
	if bucket < 1 {
		bucket = 1
	}
	if bucket > 5 {
		bucket = 5
	}

	return catalog.TagScore{
		Value:      formalityLabels[bucket],
		Confidence: confidence,
		Reasoning:  fmt.Sprintf("formality score %.1f on the 1-5 scale", score),
	}
}
