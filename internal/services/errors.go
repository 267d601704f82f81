package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFetch            = errors.New("fetch error")
	ErrValidation       = errors.New("validation error")
	ErrConfiguration    = errors.New("configuration error")
	ErrNotFound         = errors.New("not found")
	ErrTimeout          = errors.New("timeout")
	ErrTransient        = errors.New("transient failure")
	ErrDuplicateVariant = errors.New("duplicate variant")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// FailureKind buckets a stage error for run summaries.
type FailureKind string

const (
	FailureFetch      FailureKind = "fetch"
	FailureValidation FailureKind = "validation"
	FailureStore      FailureKind = "store"
	FailureInternal   FailureKind = "internal"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ClassifyFailure maps a stage error to the failure kind the run summary
// should count it under.
func ClassifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, ErrFetch), errors.Is(err, ErrTimeout):
		return FailureFetch
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicateVariant):
		return FailureValidation
	case errors.Is(err, ErrStoreUnavailable):
		return FailureStore
	default:
		return FailureInternal
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
