package sidecar_test

import (
	"os"
	"path/filepath"
	"testing"

	"shoebox/internal/sidecar"
)

const samplePayload = `{
  "title": "IMG_20180512_140000.jpg",
  "description": "lake day",
  "imageViews": "12",
  "photoTakenTime": {
    "timestamp": "1526133600",
    "formatted": "May 12, 2018, 2:00:00 PM UTC"
  },
  "creationTime": {
    "timestamp": "1526220000",
    "formatted": "May 13, 2018, 2:00:00 PM UTC"
  },
  "geoData": {
    "latitude": 44.9778,
    "longitude": -93.265,
    "altitude": 254.0,
    "latitudeSpan": 0.0,
    "longitudeSpan": 0.0
  },
  "geoDataExif": {
    "latitude": 0.0,
    "longitude": 0.0,
    "altitude": 0.0,
    "latitudeSpan": 0.0,
    "longitudeSpan": 0.0
  },
  "people": [{"name": "A"}]
}`

func TestParseSplitsKnownAndExtraFields(t *testing.T) {
	record, err := sidecar.Parse([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if record.Title != "IMG_20180512_140000.jpg" {
		t.Fatalf("unexpected title: %q", record.Title)
	}
	if record.Description != "lake day" {
		t.Fatalf("unexpected description: %q", record.Description)
	}
	if record.PhotoTaken == nil || record.PhotoTaken.Timestamp != "1526133600" {
		t.Fatalf("unexpected photoTakenTime: %#v", record.PhotoTaken)
	}
	if record.Creation == nil || record.Creation.Timestamp != "1526220000" {
		t.Fatalf("unexpected creationTime: %#v", record.Creation)
	}
	if record.Geo == nil || record.Geo.Latitude != 44.9778 || record.Geo.Longitude != -93.265 {
		t.Fatalf("unexpected geoData: %#v", record.Geo)
	}

	for _, key := range []string{"imageViews", "people"} {
		if _, ok := record.Extra[key]; !ok {
			t.Fatalf("expected %q preserved in Extra, got keys %v", key, extraKeys(record))
		}
	}
	for _, key := range []string{"title", "photoTakenTime", "geoData"} {
		if _, ok := record.Extra[key]; ok {
			t.Fatalf("typed field %q leaked into Extra", key)
		}
	}
}

func extraKeys(record *sidecar.Record) []string {
	keys := make([]string, 0, len(record.Extra))
	for k := range record.Extra {
		keys = append(keys, k)
	}
	return keys
}

func TestZeroCoordinatesMeanAbsent(t *testing.T) {
	record, err := sidecar.Parse([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if record.Geo.Absent() {
		t.Fatal("expected populated geoData to be present")
	}
	if !record.GeoExif.Absent() {
		t.Fatal("expected all-zero geoDataExif to be absent")
	}
	if best := record.BestGeo(); best == nil || best.Latitude != 44.9778 {
		t.Fatalf("expected BestGeo to pick geoData, got %#v", best)
	}
}

func TestBestGeoFallsBackToExifBlock(t *testing.T) {
	payload := `{
	  "geoData": {"latitude": 0.0, "longitude": 0.0},
	  "geoDataExif": {"latitude": 12.5, "longitude": 99.0}
	}`
	record, err := sidecar.Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	best := record.BestGeo()
	if best == nil || best.Latitude != 12.5 {
		t.Fatalf("expected geoDataExif fallback, got %#v", best)
	}
}

func TestBestGeoNilWhenBothAbsent(t *testing.T) {
	record, err := sidecar.Parse([]byte(`{"title":"x.jpg"}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if record.BestGeo() != nil {
		t.Fatalf("expected nil geo, got %#v", record.BestGeo())
	}
}

func TestTimestampValuesPreferEpoch(t *testing.T) {
	ts := &sidecar.Timestamp{Timestamp: "1526133600", Formatted: "May 12, 2018"}
	values := ts.Values()
	if len(values) != 2 || values[0] != "1526133600" {
		t.Fatalf("expected epoch first, got %v", values)
	}

	var missing *sidecar.Timestamp
	if got := missing.Values(); got != nil {
		t.Fatalf("expected nil values for nil timestamp, got %v", got)
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := sidecar.Parse([]byte(`{"title": `)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "IMG_1.jpg.json")
	if err := os.WriteFile(path, []byte(samplePayload), 0o644); err != nil {
		t.Fatal(err)
	}
	record, err := sidecar.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if record.Title == "" {
		t.Fatal("expected populated record")
	}
}
