// Package transform converts raw source listings into canonical catalog
// products.
//
// Transform validates required fields, coerces price strings to cents,
// deduplicates lists while keeping first-seen order, parses composition free
// text into structured shares, and infers fit, weight, style, and formality
// suggestions from the listing text. Multi-color listings expand into one
// parent product plus one variant per color; variant identifiers derive
// deterministically from the parent id and a folded color slug, so re-running
// the transform on unchanged input always produces the same rows.
//
// Transform is a pure function of its input and safe to run concurrently.
package transform
