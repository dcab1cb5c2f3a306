package timestamp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// namePatterns are tried in order against a base file name; the first regex
// that matches wins and there is no fall-through to later patterns, even if
// the captured value fails to parse. Capture groups are joined with "_"
// before parsing with the entry's layout. The epoch layouts are handled
// numerically.
var namePatterns = []struct {
	desc   string
	regex  *regexp.Regexp
	layout string
}{
	// Camera app prefixes: IMG_20180512_140000.jpg, VID_20180512_140000.mp4,
	// PXL_20210512_140000123.jpg (trailing millis ignored).
	{"camera_prefix", regexp.MustCompile(`^(?:IMG|VID|PANO|MVIMG|PXL)[-_](\d{8})[-_](\d{6})`), "20060102_150405"},

	// WhatsApp: IMG-20180512-WA0012.jpg carries a date only.
	{"whatsapp", regexp.MustCompile(`^(?:IMG|VID|AUD)-(\d{8})-WA\d+`), "20060102"},

	// Screenshots: Screenshot_2018-05-12-14-00-00.png and
	// Screenshot_20180512-140000.png.
	{"screenshot_dashed", regexp.MustCompile(`^Screenshot[-_](\d{4}-\d{2}-\d{2})-(\d{2})-(\d{2})-(\d{2})`), "2006-01-02_15_04_05"},
	{"screenshot_compact", regexp.MustCompile(`^Screenshot[-_](\d{8})[-_](\d{6})`), "20060102_150405"},

	// Signal exports: signal-2018-05-12-140000.jpg.
	{"signal", regexp.MustCompile(`^signal-(\d{4}-\d{2}-\d{2})-(\d{6})`), "2006-01-02_150405"},

	// Generic date + time pairs anywhere in the name.
	{"compact_pair", regexp.MustCompile(`(\d{8})[-_](\d{6})`), "20060102_150405"},
	{"dashed_datetime", regexp.MustCompile(`(\d{4}-\d{2}-\d{2})[-_ T](\d{2})[-.:](\d{2})[-.:](\d{2})`), "2006-01-02_15_04_05"},

	// Bare numeric runs: compact datetime, epoch millis, epoch seconds.
	{"compact_datetime", regexp.MustCompile(`(?:^|\D)(\d{14})(?:\D|$)`), "20060102150405"},
	{"epoch_millis", regexp.MustCompile(`(?:^|\D)(\d{13})(?:\D|$)`), "epoch_millis"},
	{"epoch_seconds", regexp.MustCompile(`(?:^|\D)(\d{10})(?:\D|$)`), "epoch_seconds"},

	// Date-only fallbacks.
	{"dashed_date", regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`), "2006-01-02"},
	{"compact_date", regexp.MustCompile(`(?:^|\D)(\d{8})(?:\D|$)`), "20060102"},
}

// FromName extracts a capture time from a media file name. It returns the
// canonical timestamp, the matched raw fragment for provenance, and whether
// a pattern matched AND parsed. The name should be a base name, extension
// included or not.
func FromName(name string) (canonical, raw, pattern string, ok bool) {
	base := strings.TrimSpace(name)
	if base == "" {
		return "", "", "", false
	}

	for _, entry := range namePatterns {
		match := entry.regex.FindStringSubmatch(base)
		if match == nil {
			continue
		}
		raw = strings.Join(match[1:], "_")
		pattern = entry.desc

		var t time.Time
		switch entry.layout {
		case "epoch_seconds":
			sec, err := strconv.ParseInt(match[1], 10, 64)
			if err != nil {
				return "", raw, pattern, false
			}
			t = time.Unix(sec, 0).UTC()
		case "epoch_millis":
			ms, err := strconv.ParseInt(match[1], 10, 64)
			if err != nil {
				return "", raw, pattern, false
			}
			t = time.UnixMilli(ms).UTC()
		default:
			parsed, err := time.Parse(entry.layout, raw)
			if err != nil {
				// First match wins: a capture that fails to parse yields no
				// filename candidate rather than probing weaker patterns.
				return "", raw, pattern, false
			}
			t = parsed
		}
		return Canonical(t), raw, pattern, true
	}
	return "", "", "", false
}
