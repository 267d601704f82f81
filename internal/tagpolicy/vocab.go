package tagpolicy

import "strings"

// CategoryKind groups source categories by the vocabulary rules that apply to
// them.
type CategoryKind int

const (
	KindTop CategoryKind = iota
	KindBottom
	KindOuterwear
	KindShoes
)

// KindOf maps a source category name to its vocabulary kind. Unknown
// categories fall back to tops, the most permissive apparel kind.
func KindOf(category string) CategoryKind {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "trousers", "jeans", "pants", "shorts", "bottoms":
		return KindBottom
	case "jackets", "blazers", "coats", "outerwear":
		return KindOuterwear
	case "shoes", "sneakers", "boots":
		return KindShoes
	default:
		return KindTop
	}
}

func (k CategoryKind) isBottom() bool { return k == KindBottom }

func (k CategoryKind) isTop() bool { return k == KindTop }

func (k CategoryKind) isShoes() bool { return k == KindShoes }

type tagSet map[string]struct{}

func newTagSet(values ...string) tagSet {
	set := make(tagSet, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

func (s tagSet) contains(value string) bool {
	_, ok := s[value]
	return ok
}

var styleIdentityTags = newTagSet(
	"minimal", "classic", "preppy", "workwear", "streetwear", "rugged",
	"tailoring", "elevated-basics", "normcore", "sporty", "outdoorsy",
	"western", "vintage", "grunge", "punk", "utilitarian",
)

var silhouetteBottomTags = newTagSet("straight", "tapered", "wide")

var silhouetteUpperTags = newTagSet("boxy", "structured", "relaxed", "longline", "tailored")

var formalityTags = newTagSet(
	"athletic", "casual", "smart-casual", "business-casual", "formal",
	// Keyword inference labels from the transform stage.
	"very_casual", "smart_casual", "business_casual",
)

var weightTags = newTagSet("light", "medium", "heavy")

var contextTags = newTagSet("everyday", "work-appropriate", "travel", "evening", "weekend")

var constructionBottomTags = newTagSet("pleated", "flat-front", "cargo", "drawstring", "elastic-waist")

var constructionUpperTags = newTagSet("structured-shoulder", "dropped-shoulder")

var patternTags = newTagSet("solid", "stripe", "check", "textured")

var shoeTypeTags = newTagSet("sneakers", "boots", "loafers", "derbies", "oxfords", "sandals", "dress-shoes")

var shoeProfileTags = newTagSet("sleek", "standard", "chunky")

var shoeClosureTags = newTagSet("lace-up", "slip-on", "buckle")

// Layer role keywords for top-category items. Mid-layer keywords are checked
// first because they are the more specific garments.
var layerMidKeywords = []string{"sweater", "cardigan", "hoodie", "knit", "pullover", "sweatshirt", "fleece"}

var layerBaseKeywords = []string{"tshirt", "t-shirt", "tee", "long sleeve", "shirt", "polo", "tank", "henley"}

func layerRoleFor(name, category string) string {
	text := strings.ToLower(name + " " + category)
	for _, keyword := range layerMidKeywords {
		if strings.Contains(text, keyword) {
			return "mid"
		}
	}
	for _, keyword := range layerBaseKeywords {
		if strings.Contains(text, keyword) {
			return "base"
		}
	}
	return ""
}
