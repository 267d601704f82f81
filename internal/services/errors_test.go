package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"refit/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrFetch, "catalog-fetch", "list", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"catalog-fetch", "list", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker for nil marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestClassifyFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want services.FailureKind
	}{
		{"fetch", services.Wrap(services.ErrFetch, "fetch", "get", "http 502", nil), services.FailureFetch},
		{"timeout", services.Wrap(services.ErrTimeout, "fetch", "get", "deadline", nil), services.FailureFetch},
		{"validation", services.Wrap(services.ErrValidation, "transform", "validate", "missing id", nil), services.FailureValidation},
		{"duplicate", services.Wrap(services.ErrDuplicateVariant, "transform", "expand", "dup color", nil), services.FailureValidation},
		{"store", services.Wrap(services.ErrStoreUnavailable, "catalog", "upsert", "conn refused", nil), services.FailureStore},
		{"other", errors.New("unclassified"), services.FailureInternal},
		{"nil", nil, services.FailureInternal},
	}
	for _, tc := range cases {
		if got := services.ClassifyFailure(tc.err); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if _, ok := services.ProductIDFromContext(ctx); ok {
		t.Fatal("expected no product id on empty context")
	}
	ctx = services.WithProductID(ctx, "4424-510-800")
	ctx = services.WithCategory(ctx, "jackets")
	ctx = services.WithStage(ctx, "transform")
	ctx = services.WithRunID(ctx, "run-1")

	if id, ok := services.ProductIDFromContext(ctx); !ok || id != "4424-510-800" {
		t.Fatalf("unexpected product id %q ok=%v", id, ok)
	}
	if cat, ok := services.CategoryFromContext(ctx); !ok || cat != "jackets" {
		t.Fatalf("unexpected category %q ok=%v", cat, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "transform" {
		t.Fatalf("unexpected stage %q ok=%v", stage, ok)
	}
	if run, ok := services.RunIDFromContext(ctx); !ok || run != "run-1" {
		t.Fatalf("unexpected run id %q ok=%v", run, ok)
	}

	if out := services.WithStage(ctx, ""); out != ctx {
		t.Fatal("expected empty stage to leave context unchanged")
	}
}
