// Package sidecar parses the JSON metadata files Google Takeout exports next
// to each media file, plus the per-directory album metadata that must be kept
// out of sidecar matching.
package sidecar
