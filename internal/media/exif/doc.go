// Package exif wraps the exiftool process for metadata extraction and
// write-back, exposing typed date and GPS accessors over the raw field map.
package exif
