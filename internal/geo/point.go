package geo

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrConflict reports an explicit sign that contradicts an explicit
	// cardinal reference. Never silently corrected.
	ErrConflict = errors.New("sign contradicts cardinal reference")

	// ErrInvalid reports a coordinate that cannot be parsed or is out of
	// range. Callers skip the candidate.
	ErrInvalid = errors.New("invalid coordinate")
)

// sentinelValue paired with the "M" pseudo-reference marks "no location" in
// embedded GPS output.
const sentinelValue = 200.0

// Point is a canonical geotag: absolute coordinate values plus hemisphere
// references, the form both the ledger and the cluster report persist.
type Point struct {
	Latitude     float64 `json:"latitude"`
	LatitudeRef  string  `json:"latitude_ref"`
	Longitude    float64 `json:"longitude"`
	LongitudeRef string  `json:"longitude_ref"`
}

// Axis selects the hemisphere letters a coordinate may carry.
type Axis int

const (
	AxisLatitude Axis = iota
	AxisLongitude
)

func (a Axis) refs() (positive, negative string) {
	if a == AxisLatitude {
		return "N", "S"
	}
	return "E", "W"
}

func (a Axis) limit() float64 {
	if a == AxisLatitude {
		return 90
	}
	return 180
}

// dmsPattern accepts exiftool's degrees-minutes-seconds rendering:
// 45 deg 30' 15.5" N (seconds and the cardinal letter optional).
var dmsPattern = regexp.MustCompile(`^([+-]?\d+(?:\.\d+)?)\s*deg\s*(\d+(?:\.\d+)?)'\s*(?:(\d+(?:\.\d+)?)"\s*)?([NSEW])?$`)

// decimalPattern accepts signed decimal degrees with an optional cardinal
// suffix: -12.5, 12.5 N, +12.5 W.
var decimalPattern = regexp.MustCompile(`^([+-]?\d+(?:\.\d+)?)\s*([NSEW])?$`)

type coordinate struct {
	abs      float64
	ref      string
	sentinel bool
}

// parseCoordinate decodes one axis value. An explicit sign and an explicit
// reference must agree in direction; an unsigned value takes its hemisphere
// from the reference; a bare signed value takes it from the sign.
func parseCoordinate(raw, explicitRef string, axis Axis) (coordinate, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return coordinate{}, fmt.Errorf("%w: empty value", ErrInvalid)
	}

	ref := normalizeRef(explicitRef)
	if ref == "M" {
		return coordinate{sentinel: true}, nil
	}

	var (
		magnitude float64
		signed    bool
		negative  bool
	)

	if m := dmsPattern.FindStringSubmatch(value); m != nil {
		deg, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return coordinate{}, fmt.Errorf("%w: %q", ErrInvalid, raw)
		}
		minutes, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return coordinate{}, fmt.Errorf("%w: %q", ErrInvalid, raw)
		}
		seconds := 0.0
		if m[3] != "" {
			seconds, err = strconv.ParseFloat(m[3], 64)
			if err != nil {
				return coordinate{}, fmt.Errorf("%w: %q", ErrInvalid, raw)
			}
		}
		signed = strings.HasPrefix(m[1], "+") || strings.HasPrefix(m[1], "-")
		negative = strings.HasPrefix(m[1], "-")
		magnitude = math.Abs(deg) + minutes/60 + seconds/3600
		if embedded := m[4]; embedded != "" {
			if ref != "" && ref != embedded {
				return coordinate{}, fmt.Errorf("%w: %q vs ref %q", ErrConflict, raw, explicitRef)
			}
			ref = embedded
		}
	} else if m := decimalPattern.FindStringSubmatch(value); m != nil {
		parsed, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return coordinate{}, fmt.Errorf("%w: %q", ErrInvalid, raw)
		}
		signed = strings.HasPrefix(m[1], "+") || strings.HasPrefix(m[1], "-")
		negative = parsed < 0 || strings.HasPrefix(m[1], "-")
		magnitude = math.Abs(parsed)
		if embedded := m[2]; embedded != "" {
			if ref != "" && ref != embedded {
				return coordinate{}, fmt.Errorf("%w: %q vs ref %q", ErrConflict, raw, explicitRef)
			}
			ref = embedded
		}
	} else {
		return coordinate{}, fmt.Errorf("%w: %q", ErrInvalid, raw)
	}

	positiveRef, negativeRef := axis.refs()
	if ref != "" && ref != positiveRef && ref != negativeRef {
		return coordinate{}, fmt.Errorf("%w: reference %q on wrong axis", ErrInvalid, ref)
	}

	if magnitude == sentinelValue && ref == "" {
		// 200 with the M pseudo-reference stripped upstream.
		return coordinate{sentinel: true}, nil
	}

	if signed && ref != "" {
		if negative && ref == positiveRef {
			return coordinate{}, fmt.Errorf("%w: %q with reference %q", ErrConflict, raw, ref)
		}
		if !negative && ref == negativeRef {
			return coordinate{}, fmt.Errorf("%w: %q with reference %q", ErrConflict, raw, ref)
		}
	}

	if ref == "" {
		if negative {
			ref = negativeRef
		} else {
			ref = positiveRef
		}
	}

	if magnitude > axis.limit() {
		return coordinate{}, fmt.Errorf("%w: %v exceeds %v", ErrInvalid, magnitude, axis.limit())
	}

	return coordinate{abs: magnitude, ref: ref}, nil
}

func normalizeRef(ref string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(ref))
	switch trimmed {
	case "NORTH":
		return "N"
	case "SOUTH":
		return "S"
	case "EAST":
		return "E"
	case "WEST":
		return "W"
	default:
		if len(trimmed) > 1 {
			trimmed = trimmed[:1]
		}
		return trimmed
	}
}

// ParsePair decodes the discrete four-field GPS form. A sentinel on either
// axis means the whole point is absent (nil, nil).
func ParsePair(latRaw, latRef, lonRaw, lonRef string) (*Point, error) {
	lat, err := parseCoordinate(latRaw, latRef, AxisLatitude)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lon, err := parseCoordinate(lonRaw, lonRef, AxisLongitude)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	if lat.sentinel || lon.sentinel {
		return nil, nil
	}
	return &Point{
		Latitude:     lat.abs,
		LatitudeRef:  lat.ref,
		Longitude:    lon.abs,
		LongitudeRef: lon.ref,
	}, nil
}

// ParsePosition decodes a combined position string: two comma-separated
// coordinates, or the four-part 200,M,200,M sentinel.
func ParsePosition(raw string) (*Point, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, fmt.Errorf("%w: empty position", ErrInvalid)
	}

	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) == 4 {
		return ParsePair(parts[0], parts[1], parts[2], parts[3])
	}
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: position %q", ErrInvalid, raw)
	}
	return ParsePair(parts[0], "", parts[1], "")
}

// FromSigned builds a Point from signed decimal degrees, as sidecar geoData
// provides them.
func FromSigned(lat, lon float64) (*Point, error) {
	if math.Abs(lat) > 90 {
		return nil, fmt.Errorf("%w: latitude %v", ErrInvalid, lat)
	}
	if math.Abs(lon) > 180 {
		return nil, fmt.Errorf("%w: longitude %v", ErrInvalid, lon)
	}
	point := &Point{
		Latitude:     math.Abs(lat),
		LatitudeRef:  "N",
		Longitude:    math.Abs(lon),
		LongitudeRef: "E",
	}
	if lat < 0 {
		point.LatitudeRef = "S"
	}
	if lon < 0 {
		point.LongitudeRef = "W"
	}
	return point, nil
}

// Signed returns the point as signed decimal degrees.
func (p *Point) Signed() (lat, lon float64) {
	lat = p.Latitude
	if p.LatitudeRef == "S" {
		lat = -lat
	}
	lon = p.Longitude
	if p.LongitudeRef == "W" {
		lon = -lon
	}
	return lat, lon
}

// Equal reports coordinate equality in signed space.
func (p *Point) Equal(other *Point) bool {
	if p == nil || other == nil {
		return p == other
	}
	aLat, aLon := p.Signed()
	bLat, bLon := other.Signed()
	return aLat == bLat && aLon == bLon
}

func (p *Point) String() string {
	if p == nil {
		return "<no location>"
	}
	return fmt.Sprintf("%.5f %s, %.5f %s", p.Latitude, p.LatitudeRef, p.Longitude, p.LongitudeRef)
}
