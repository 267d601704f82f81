// Package tracking persists which source items have already been ingested so
// repeat runs can skip the network fetch.
//
// The store is a disposable SQLite cache keyed by product id. Losing it never
// loses product data; the next run simply re-fetches and re-upserts. Records
// are created on first successful ingest and updated in place on every later
// one, so first-seen timestamps survive re-ingest. Schema changes add a new
// file under migrations/.
package tracking
