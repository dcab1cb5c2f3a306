// Package resolve computes one canonical timestamp and one canonical geotag
// per media file from three candidate sources: the file name, the matched
// sidecar, and embedded container metadata. The earliest valid timestamp
// wins; geotags prefer embedded coordinates over the sidecar block. Files are
// resolved on a worker pool and every candidate considered is recorded in the
// ledger entry's provenance.
package resolve
