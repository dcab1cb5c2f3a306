// Package workflow advances queue items through the processing pipeline.
//
// The Manager polls the queue, reclaims stale work via heartbeats, and feeds
// items into registered stage handlers (scan, match, resolve, cluster) while
// capturing progress and failure metadata. It also aggregates queue stats,
// calls stage health checks, and emits run-level notifications when
// processing starts or completes.
//
// Items move strictly in order: a root is scanned into the ledger, sidecars
// are matched, timestamps and geotags are resolved, and relationships are
// clustered. Stage failures persist either a failed status or, for
// validation and configuration problems an operator must fix, a review
// status that keeps the item out of automatic retries.
//
// Start runs the poll loop on a background goroutine for daemon use;
// RunUntilIdle drains the queue on the calling goroutine for one-shot CLI
// processing.
package workflow
