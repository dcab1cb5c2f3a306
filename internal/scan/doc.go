// Package scan walks a batch root, classifies every file as media, sidecar,
// or album metadata, and seeds the ledger with one entry per media file.
package scan
