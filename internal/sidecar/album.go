package sidecar

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
)

// Takeout writes these per-directory JSON files to describe albums and
// account artifacts. They are not sidecars and must never enter matching.
var albumMetadataNames = map[string]struct{}{
	"metadata.json":                     {},
	"print-subscriptions.json":          {},
	"shared_album_comments.json":        {},
	"user-generated-memory-titles.json": {},
}

var parentheticalIndex = regexp.MustCompile(`\(\d+\)$`)

// IsAlbumMetadata reports whether the file name denotes album or account
// metadata rather than a media sidecar. Duplicate-export names such as
// metadata(2).json count as well.
func IsAlbumMetadata(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	if _, ok := albumMetadataNames[base]; ok {
		return true
	}
	ext := filepath.Ext(base)
	if ext != ".json" {
		return false
	}
	stem := parentheticalIndex.ReplaceAllString(strings.TrimSuffix(base, ext), "")
	_, ok := albumMetadataNames[stem+ext]
	return ok
}

// Album is the subset of an album metadata.json the report surfaces.
type Album struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ParseAlbum decodes an album metadata payload.
func ParseAlbum(data []byte) (*Album, error) {
	var album Album
	if err := json.Unmarshal(data, &album); err != nil {
		return nil, fmt.Errorf("parse album metadata: %w", err)
	}
	return &album, nil
}

// LoadAlbum reads and decodes the album metadata at path.
func LoadAlbum(path string) (*Album, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read album metadata: %w", err)
	}
	return ParseAlbum(data)
}
