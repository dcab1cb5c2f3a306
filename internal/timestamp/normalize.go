package timestamp

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

// Layout is the canonical comparable timestamp form used in the ledger and
// for all cross-source comparisons.
const Layout = "2006:01:02 15:04:05-07:00"

// Sentinel is the canonical rendering of Go's zero time. It marks "no valid
// timestamp" when it appears in raw candidate values and is never a valid
// resolution result.
const Sentinel = "0001:01:01 00:00:00+00:00"

// ErrUnparsable reports a raw value no known layout accepts.
var ErrUnparsable = errors.New("unparsable timestamp")

// layouts are tried in order after sanitization. Offset-bearing layouts come
// before their offset-less twins so trailing zone text is never dropped.
var layouts = []string{
	Layout,
	"2006:01:02 15:04:05-0700",
	"2006:01:02 15:04:05",
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04:05",
	"Jan 2, 2006, 3:04:05 PM -07:00",
	"Jan 2, 2006, 3:04:05 PM",
	"2006/01/02 15:04:05",
	"20060102_150405",
	"2006-01-02 15-04-05",
	"2006-01-02 150405",
	"2006:01:02",
	"2006-01-02",
}

var (
	trailingZone   = regexp.MustCompile(`\s([A-Z]{2,5})$`)
	trailingZ      = regexp.MustCompile(`([0-9])Z$`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Standardize sanitizes a raw candidate value and renders it in the
// canonical layout. Failures are recoverable: the caller skips the candidate.
func Standardize(raw string) (string, error) {
	cleaned := sanitize(raw)
	if cleaned == "" {
		return "", fmt.Errorf("%w: empty value", ErrUnparsable)
	}

	if isDigits(cleaned) {
		t, err := parseDigits(cleaned)
		if err != nil {
			return "", err
		}
		return Canonical(t), nil
	}

	cleaned = trailingZ.ReplaceAllString(cleaned, "${1}+00:00")
	cleaned = mapTrailingAbbreviation(cleaned)

	for _, layout := range layouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return Canonical(t), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnparsable, raw)
}

// sanitize folds the value to plain ASCII and collapses whitespace. Takeout
// sidecars carry narrow no-break spaces and localized digits; EXIF output
// occasionally carries stray control bytes.
func sanitize(raw string) string {
	folded := norm.NFKC.String(raw)
	ascii := unidecode.Unidecode(folded)
	var b strings.Builder
	b.Grow(len(ascii))
	for _, r := range ascii {
		if r > 127 {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(b.String(), " "))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseDigits interprets bare numeric values: compact datetimes, epoch
// seconds, and epoch milliseconds. Other digit counts are ambiguous and
// rejected.
func parseDigits(s string) (time.Time, error) {
	switch len(s) {
	case 14:
		t, err := time.Parse("20060102150405", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsable, s)
		}
		return t, nil
	case 13:
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsable, s)
		}
		return time.UnixMilli(ms).UTC(), nil
	case 10:
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsable, s)
		}
		return time.Unix(sec, 0).UTC(), nil
	case 8:
		t, err := time.Parse("20060102", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsable, s)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("%w: ambiguous digit run %q", ErrUnparsable, s)
	}
}

// mapTrailingAbbreviation replaces a trailing timezone abbreviation with its
// UTC offset when the value has no explicit offset. Unknown trailing tokens
// are left in place so layout parsing can reject them.
func mapTrailingAbbreviation(value string) string {
	match := trailingZone.FindStringSubmatch(value)
	if match == nil {
		return value
	}
	offset, ok := zoneOffsets[match[1]]
	if !ok {
		return value
	}
	return value[:len(value)-len(match[1])] + offset
}

// Canonical renders t in the canonical layout, preserving its offset.
func Canonical(t time.Time) string {
	return t.Format(Layout)
}

// Parse decodes a canonical timestamp.
func Parse(canonical string) (time.Time, error) {
	t, err := time.Parse(Layout, canonical)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse canonical timestamp: %w", err)
	}
	return t, nil
}

// IsValid reports whether a canonical value denotes a real capture time.
// Zero-year values and the sentinel never count, so they can never beat a
// valid candidate and never leak into the ledger as resolutions.
func IsValid(canonical string) bool {
	if strings.TrimSpace(canonical) == "" || canonical == Sentinel {
		return false
	}
	t, err := Parse(canonical)
	if err != nil {
		return false
	}
	if t.IsZero() || t.Year() == 0 {
		return false
	}
	return t.UTC().Format(Layout) != Sentinel
}

// Earliest returns the chronologically earliest valid candidate, or false
// when no candidate is valid. Ties keep the first listed candidate, which
// lets callers encode source priority in argument order.
func Earliest(candidates ...string) (string, bool) {
	var (
		best  string
		bestT time.Time
		found bool
	)
	for _, candidate := range candidates {
		if !IsValid(candidate) {
			continue
		}
		t, err := Parse(candidate)
		if err != nil {
			continue
		}
		if !found || t.Before(bestT) {
			best = candidate
			bestT = t
			found = true
		}
	}
	return best, found
}
