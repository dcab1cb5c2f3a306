package exif

import (
	"fmt"
	"math"
	"strings"

	exiftool "github.com/barasher/go-exiftool"

	"shoebox/internal/geo"
)

const (
	fieldDateTimeOriginal = "DateTimeOriginal"
	fieldCreateDate       = "CreateDate"
	fieldModifyDate       = "ModifyDate"

	fieldGPSPosition     = "GPSPosition"
	fieldGPSLatitude     = "GPSLatitude"
	fieldGPSLatitudeRef  = "GPSLatitudeRef"
	fieldGPSLongitude    = "GPSLongitude"
	fieldGPSLongitudeRef = "GPSLongitudeRef"
)

// Date fields in candidate order. The first fields are the ones cameras set
// at capture time; the later ones drift when files are edited or copied.
var (
	imageDateFields = []string{
		fieldDateTimeOriginal,
		fieldCreateDate,
		fieldModifyDate,
	}
	videoDateFields = []string{
		"CreationDate",
		"MediaCreateDate",
		"TrackCreateDate",
		fieldCreateDate,
	}
	defaultDateFields = []string{
		fieldDateTimeOriginal,
		"CreationDate",
		fieldCreateDate,
		"MediaCreateDate",
		"DateTimeCreated",
	}
)

// DateFields returns the embedded date fields, in candidate order, for a file
// extension (with or without the leading dot).
func DateFields(ext string) []string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg", "heic", "heif", "tif", "tiff", "png", "gif", "webp":
		return imageDateFields
	case "mp4", "mov", "m4v", "avi", "mpg", "mpeg", "3gp", "mkv", "webm":
		return videoDateFields
	default:
		return defaultDateFields
	}
}

// DateValue is one embedded date field and its raw string value.
type DateValue struct {
	Field string
	Value string
}

// Raw is one file's extracted metadata.
type Raw struct {
	meta exiftool.FileMetadata
}

// RawFromFields builds a Raw from a bare field map. Intended for tests and
// callers that already hold extracted values.
func RawFromFields(fields map[string]interface{}) Raw {
	return Raw{meta: exiftool.FileMetadata{Fields: fields}}
}

// Field returns the raw string form of a metadata field.
func (r Raw) Field(key string) (string, bool) {
	value, ok := r.meta.Fields[key]
	if !ok || value == nil {
		return "", false
	}
	text := strings.TrimSpace(fmt.Sprintf("%v", value))
	if text == "" {
		return "", false
	}
	return text, true
}

// Dates returns the date fields present for the extension, in candidate
// order. Absent fields are skipped.
func (r Raw) Dates(ext string) []DateValue {
	fields := DateFields(ext)
	values := make([]DateValue, 0, len(fields))
	for _, field := range fields {
		if value, ok := r.Field(field); ok {
			values = append(values, DateValue{Field: field, Value: value})
		}
	}
	return values
}

// Position returns the embedded geotag, or nil when the file carries none.
// When both the combined GPSPosition and the discrete fields are present they
// must agree; a disagreement is a conflict, never silently resolved.
func (r Raw) Position() (*geo.Point, error) {
	discrete, discreteOK, err := r.discretePosition()
	if err != nil {
		return nil, err
	}

	var combined *geo.Point
	combinedRaw, combinedOK := r.Field(fieldGPSPosition)
	if combinedOK {
		combined, err = geo.ParsePosition(combinedRaw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fieldGPSPosition, err)
		}
	}

	switch {
	case discreteOK && combinedOK:
		if !pointsAgree(discrete, combined) {
			return nil, fmt.Errorf("%w: %s %v vs discrete fields %v",
				geo.ErrConflict, fieldGPSPosition, combined, discrete)
		}
		return discrete, nil
	case discreteOK:
		return discrete, nil
	case combinedOK:
		return combined, nil
	default:
		return nil, nil
	}
}

func (r Raw) discretePosition() (*geo.Point, bool, error) {
	latRaw, latOK := r.Field(fieldGPSLatitude)
	lonRaw, lonOK := r.Field(fieldGPSLongitude)
	if !latOK || !lonOK {
		return nil, false, nil
	}
	latRef, _ := r.Field(fieldGPSLatitudeRef)
	lonRef, _ := r.Field(fieldGPSLongitudeRef)
	point, err := geo.ParsePair(latRaw, latRef, lonRaw, lonRef)
	if err != nil {
		return nil, false, fmt.Errorf("%s/%s: %w", fieldGPSLatitude, fieldGPSLongitude, err)
	}
	return point, true, nil
}

// pointsAgree compares in signed space with a small tolerance; the combined
// rendering loses precision against the discrete values.
func pointsAgree(a, b *geo.Point) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	aLat, aLon := a.Signed()
	bLat, bLon := b.Signed()
	return math.Abs(aLat-bLat) <= 1e-5 && math.Abs(aLon-bLon) <= 1e-5
}
