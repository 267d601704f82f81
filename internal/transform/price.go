package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"refit/internal/services"
)

// ParsePriceCents coerces a source price string into integer cents. Currency
// symbols and thousands separators are tolerated; "79,95" and "79.95" both
// parse to 7995. Negative and non-numeric values are rejected.
func ParsePriceCents(value string) (int64, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0, services.Wrap(services.ErrValidation, "transform", "price", "empty price", nil)
	}

	var b strings.Builder
	for _, r := range cleaned {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned = b.String()
	if cleaned == "" {
		return 0, services.Wrap(services.ErrValidation, "transform", "price", fmt.Sprintf("no digits in %q", value), nil)
	}

	// A trailing comma group of two digits is a decimal separator; any other
	// comma is a thousands separator.
	if idx := strings.LastIndexByte(cleaned, ','); idx >= 0 {
		if len(cleaned)-idx-1 <= 2 && !strings.Contains(cleaned[idx:], ".") {
			integer := strings.NewReplacer(",", "", ".", "").Replace(cleaned[:idx])
			cleaned = integer + "." + cleaned[idx+1:]
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "transform", "price", fmt.Sprintf("parse %q", value), err)
	}
	if amount < 0 {
		return 0, services.Wrap(services.ErrValidation, "transform", "price", fmt.Sprintf("negative price %q", value), nil)
	}
	return int64(math.Round(amount * 100)), nil
}
