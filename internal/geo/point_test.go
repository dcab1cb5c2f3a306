package geo_test

import (
	"errors"
	"math"
	"testing"

	"shoebox/internal/geo"
)

func TestParsePairDecimalWithRefs(t *testing.T) {
	point, err := geo.ParsePair("45.0", "N", "93.0", "W")
	if err != nil {
		t.Fatalf("ParsePair returned error: %v", err)
	}
	if point == nil {
		t.Fatal("expected a point")
	}
	if point.Latitude != 45.0 || point.LatitudeRef != "N" {
		t.Fatalf("unexpected latitude %v %s", point.Latitude, point.LatitudeRef)
	}
	if point.Longitude != 93.0 || point.LongitudeRef != "W" {
		t.Fatalf("unexpected longitude %v %s", point.Longitude, point.LongitudeRef)
	}
	lat, lon := point.Signed()
	if lat != 45.0 || lon != -93.0 {
		t.Fatalf("signed form = %v, %v", lat, lon)
	}
}

func TestParsePairSignedWithoutRefs(t *testing.T) {
	point, err := geo.ParsePair("-12.5", "", "100.25", "")
	if err != nil {
		t.Fatalf("ParsePair returned error: %v", err)
	}
	if point.LatitudeRef != "S" || point.Latitude != 12.5 {
		t.Fatalf("unexpected latitude %v %s", point.Latitude, point.LatitudeRef)
	}
	if point.LongitudeRef != "E" || point.Longitude != 100.25 {
		t.Fatalf("unexpected longitude %v %s", point.Longitude, point.LongitudeRef)
	}
}

func TestParsePairCardinalSuffixInValue(t *testing.T) {
	point, err := geo.ParsePair("12.3 S", "", "45.6 E", "")
	if err != nil {
		t.Fatalf("ParsePair returned error: %v", err)
	}
	if point.LatitudeRef != "S" || point.Latitude != 12.3 {
		t.Fatalf("unexpected latitude %v %s", point.Latitude, point.LatitudeRef)
	}
	if point.LongitudeRef != "E" || point.Longitude != 45.6 {
		t.Fatalf("unexpected longitude %v %s", point.Longitude, point.LongitudeRef)
	}
}

func TestParsePairDegreesMinutesSeconds(t *testing.T) {
	point, err := geo.ParsePair(`45 deg 30' 15.5" N`, "", `93 deg 15' 54.0" W`, "")
	if err != nil {
		t.Fatalf("ParsePair returned error: %v", err)
	}
	wantLat := 45.0 + 30.0/60 + 15.5/3600
	if math.Abs(point.Latitude-wantLat) > 1e-9 || point.LatitudeRef != "N" {
		t.Fatalf("latitude = %v %s, want %v N", point.Latitude, point.LatitudeRef, wantLat)
	}
	wantLon := 93.0 + 15.0/60 + 54.0/3600
	if math.Abs(point.Longitude-wantLon) > 1e-9 || point.LongitudeRef != "W" {
		t.Fatalf("longitude = %v %s, want %v W", point.Longitude, point.LongitudeRef, wantLon)
	}
}

func TestParsePairSentinelMeansAbsent(t *testing.T) {
	point, err := geo.ParsePair("200", "M", "200", "M")
	if err != nil {
		t.Fatalf("sentinel should not error: %v", err)
	}
	if point != nil {
		t.Fatalf("sentinel should yield no point, got %v", point)
	}
}

func TestParsePositionSentinel(t *testing.T) {
	point, err := geo.ParsePosition("200,M,200,M")
	if err != nil {
		t.Fatalf("sentinel position should not error: %v", err)
	}
	if point != nil {
		t.Fatalf("sentinel position should yield no point, got %v", point)
	}
}

func TestParsePositionCombined(t *testing.T) {
	point, err := geo.ParsePosition("45.0 N, 93.0 W")
	if err != nil {
		t.Fatalf("ParsePosition returned error: %v", err)
	}
	if point.LatitudeRef != "N" || point.LongitudeRef != "W" {
		t.Fatalf("unexpected refs %s %s", point.LatitudeRef, point.LongitudeRef)
	}
	if point.Latitude != 45.0 || point.Longitude != 93.0 {
		t.Fatalf("unexpected values %v %v", point.Latitude, point.Longitude)
	}
}

func TestParsePairSignConflict(t *testing.T) {
	if _, err := geo.ParsePair("-45.0", "N", "93.0", "W"); !errors.Is(err, geo.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := geo.ParsePair("45.0", "N", "+93.0", "W"); !errors.Is(err, geo.ErrConflict) {
		t.Fatalf("expected ErrConflict for signed longitude, got %v", err)
	}
}

func TestParsePairOutOfRange(t *testing.T) {
	if _, err := geo.ParsePair("95.0", "N", "93.0", "W"); !errors.Is(err, geo.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for latitude 95, got %v", err)
	}
	if _, err := geo.ParsePair("45.0", "N", "190.0", "W"); !errors.Is(err, geo.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for longitude 190, got %v", err)
	}
}

func TestParsePairWrongAxisReference(t *testing.T) {
	if _, err := geo.ParsePair("45.0", "E", "93.0", "W"); !errors.Is(err, geo.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for E latitude, got %v", err)
	}
}

func TestParsePairGarbage(t *testing.T) {
	if _, err := geo.ParsePair("not-a-number", "", "93.0", ""); !errors.Is(err, geo.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestFromSignedRoundTrip(t *testing.T) {
	point, err := geo.FromSigned(45.0, -93.0)
	if err != nil {
		t.Fatalf("FromSigned returned error: %v", err)
	}
	if point.LatitudeRef != "N" || point.LongitudeRef != "W" {
		t.Fatalf("unexpected refs %s %s", point.LatitudeRef, point.LongitudeRef)
	}
	lat, lon := point.Signed()
	if lat != 45.0 || lon != -93.0 {
		t.Fatalf("round trip lost the signs: %v, %v", lat, lon)
	}

	if _, err := geo.FromSigned(91.0, 0); !errors.Is(err, geo.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for latitude 91, got %v", err)
	}
}

func TestEqual(t *testing.T) {
	a, _ := geo.FromSigned(45.0, -93.0)
	b, _ := geo.ParsePair("45.0", "N", "93.0", "W")
	if !a.Equal(b) {
		t.Fatalf("%v should equal %v", a, b)
	}
	c, _ := geo.FromSigned(45.0, 93.0)
	if a.Equal(c) {
		t.Fatalf("%v should not equal %v", a, c)
	}
}
