// Package queue persists batch items in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats queries,
// heartbeat tracking, stuck-item recovery, and status transitions that mirror
// the pipeline stages. Batch items capture progress, per-stage summary blobs,
// and review flags so stages can coordinate without additional state; the
// heavyweight per-file results live in the ledger beside each extraction root.
//
// The database is treated as transient storage for in-flight runs rather than
// a long-term archive. Schema changes bump the version in schema.go; users
// clear the database to adopt the new schema.
package queue
