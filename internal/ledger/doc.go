// Package ledger persists what is known about every media file in a batch
// root: its sidecar match, canonical timestamp, geotag, and the provenance of
// each decision. Writes are atomic and validated, so a crashed or failed run
// never leaves a truncated ledger behind.
package ledger
