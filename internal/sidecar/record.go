package sidecar

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// Timestamp is one of the paired time blocks Takeout writes per sidecar.
// Timestamp is epoch seconds as a decimal string; Formatted is a localized
// human-readable rendering that may omit timezone detail.
type Timestamp struct {
	Timestamp string `json:"timestamp"`
	Formatted string `json:"formatted"`
}

// Values returns the raw candidate strings in preference order. The epoch
// field is exact; the formatted field is a lossy fallback.
func (t *Timestamp) Values() []string {
	if t == nil {
		return nil
	}
	var out []string
	if t.Timestamp != "" {
		out = append(out, t.Timestamp)
	}
	if t.Formatted != "" {
		out = append(out, t.Formatted)
	}
	return out
}

// GeoData is the coordinate block Takeout attaches to sidecars. Takeout
// writes all-zero blocks for media with no location, so (0,0) means absent.
type GeoData struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Altitude      float64 `json:"altitude"`
	LatitudeSpan  float64 `json:"latitudeSpan"`
	LongitudeSpan float64 `json:"longitudeSpan"`
}

// Absent reports whether the block carries no usable coordinates.
func (g *GeoData) Absent() bool {
	return g == nil || (g.Latitude == 0 && g.Longitude == 0)
}

// Record is one parsed sidecar. Known fields are typed; everything else the
// export wrote lands in Extra so no information is dropped on disk rewrites
// or future schema growth.
type Record struct {
	Title       string
	Description string
	PhotoTaken  *Timestamp
	Creation    *Timestamp
	Geo         *GeoData
	GeoExif     *GeoData
	Extra       map[string]json.RawMessage
}

const (
	keyTitle       = "title"
	keyDescription = "description"
	keyPhotoTaken  = "photoTakenTime"
	keyCreation    = "creationTime"
	keyGeoData     = "geoData"
	keyGeoDataExif = "geoDataExif"
)

// UnmarshalJSON splits the payload into typed fields plus the Extra side-map.
func (r *Record) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	take := func(key string, dst any) error {
		payload, ok := raw[key]
		if !ok {
			return nil
		}
		delete(raw, key)
		if err := json.Unmarshal(payload, dst); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		return nil
	}

	*r = Record{}
	if err := take(keyTitle, &r.Title); err != nil {
		return err
	}
	if err := take(keyDescription, &r.Description); err != nil {
		return err
	}
	if err := take(keyPhotoTaken, &r.PhotoTaken); err != nil {
		return err
	}
	if err := take(keyCreation, &r.Creation); err != nil {
		return err
	}
	if err := take(keyGeoData, &r.Geo); err != nil {
		return err
	}
	if err := take(keyGeoDataExif, &r.GeoExif); err != nil {
		return err
	}
	if len(raw) > 0 {
		r.Extra = raw
	}
	return nil
}

// Parse decodes a sidecar payload.
func Parse(data []byte) (*Record, error) {
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse sidecar: %w", err)
	}
	return &record, nil
}

// Load reads and decodes the sidecar at path.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sidecar: %w", err)
	}
	return Parse(data)
}

// BestGeo returns the first usable coordinate block, preferring geoData over
// geoDataExif, or nil when neither carries coordinates.
func (r *Record) BestGeo() *GeoData {
	if !r.Geo.Absent() {
		return r.Geo
	}
	if !r.GeoExif.Absent() {
		return r.GeoExif
	}
	return nil
}
