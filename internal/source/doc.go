// Package source lists and fetches raw product records from the external
// retail feed.
//
// The feed itself (page rendering, scraping) lives outside this system; the
// Client here talks to an already-rendered JSON listing per category. All
// requests share one rate gate so worker concurrency never multiplies the
// request rate against the source site. Fetch failures and timeouts classify
// as recoverable, retried with backoff up to the configured attempt budget.
package source
