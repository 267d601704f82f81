// Package services defines shared utilities consumed by the pipeline stages
// and store integrations.
//
// Key responsibilities:
//   - Context helpers that stamp product IDs, category names, and run
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent failure kinds for run summaries.
//
// Use these helpers when wiring new stage logic so operational behaviour (error
// handling, observability, retries) stays uniform across the pipeline.
package services
