// Package tagpolicy is the decision layer between raw tag suggestions and the
// canonical tag set.
//
// Sensors and keyword inference propose tags with confidence scores; this
// package decides what to accept, suppress, or default. Values below a
// category's configured minimum are dropped entirely rather than degrading to
// low-confidence output, cardinality caps keep only the strongest values per
// category, and scalar fields resolve to the single highest-confidence value.
// Downstream consumers only ever see plain categorical values.
//
// Every application stamps the canonical payload with the policy version so
// historical output stays attributable after rules change. Apply is pure and
// safe to run concurrently.
package tagpolicy
