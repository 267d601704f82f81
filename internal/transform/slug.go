package transform

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	texttransform "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldDiacritics = texttransform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify folds a color name into a stable identifier fragment: diacritics
// removed, lowercased, runs of non-alphanumerics collapsed to single dashes.
// "Écru / Off White" becomes "ecru-off-white".
func Slugify(value string) string {
	folded, _, err := texttransform.String(foldDiacritics, value)
	if err != nil {
		folded = value
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	lastDash := true
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// VariantID derives the deterministic identifier for a color variant.
func VariantID(parentID, color string) string {
	slug := Slugify(color)
	if slug == "" {
		return parentID
	}
	return parentID + "-" + slug
}
