// Package catalog owns the persisted product records and their tag overlay
// entries.
//
// Products are keyed by a stable string identifier and carry two tag payloads:
// the raw confidence-scored suggestions captured at ingest time (immutable once
// written) and the canonical payload derived from them by the tag policy
// engine. Human curation never edits either payload in place; it lands in
// append-only overlay tables that are composed with the product at read time.
//
// The Store interface has two implementations: a Postgres-backed store built on
// bun for production use, and an in-memory store for tests and wiring code.
package catalog
