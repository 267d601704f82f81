package transform

import (
	"regexp"
	"strconv"
	"strings"

	"refit/internal/catalog"
)

var compositionPart = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*%\s*([A-Za-z][A-Za-z \-]*)`)

// ParseComposition normalizes composition free text such as
// "52% cotton, 48% polyester" into structured shares. Text with no
// recognizable percentage pairs returns nil; partial matches keep whatever
// parsed. Callers treat nil as "composition unknown", never as a failure.
func ParseComposition(text string) []catalog.CompositionPart {
	matches := compositionPart.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	parts := make([]catalog.CompositionPart, 0, len(matches))
	for _, match := range matches {
		raw := strings.ReplaceAll(match[1], ",", ".")
		percent, err := strconv.ParseFloat(raw, 64)
		if err != nil || percent <= 0 || percent > 100 {
			continue
		}
		material := strings.ToLower(strings.TrimSpace(match[2]))
		if material == "" {
			continue
		}
		parts = append(parts, catalog.CompositionPart{Material: material, Percent: percent})
	}
	if len(parts) == 0 {
		return nil
	}
	return parts
}
