package timestamp_test

import (
	"testing"

	"shoebox/internal/timestamp"
)

func TestFromNamePatterns(t *testing.T) {
	cases := []struct {
		name        string
		file        string
		want        string
		wantPattern string
	}{
		{"img_prefix", "IMG_20180512_140005.jpg", "2018:05:12 14:00:05+00:00", "camera_prefix"},
		{"vid_prefix", "VID_20180512_140005.mp4", "2018:05:12 14:00:05+00:00", "camera_prefix"},
		{"pxl_millis", "PXL_20210512_140005123.jpg", "2021:05:12 14:00:05+00:00", "camera_prefix"},
		{"whatsapp_date_only", "IMG-20180512-WA0012.jpg", "2018:05:12 00:00:00+00:00", "whatsapp"},
		{"screenshot_dashed", "Screenshot_2018-05-12-14-00-05.png", "2018:05:12 14:00:05+00:00", "screenshot_dashed"},
		{"screenshot_compact", "Screenshot_20180512-140005.png", "2018:05:12 14:00:05+00:00", "screenshot_compact"},
		{"signal", "signal-2018-05-12-140005.jpg", "2018:05:12 14:00:05+00:00", "signal"},
		{"generic_pair", "holiday_20180512_140005_final.jpg", "2018:05:12 14:00:05+00:00", "compact_pair"},
		{"dashed_datetime", "2018-05-12 14.00.05.jpg", "2018:05:12 14:00:05+00:00", "dashed_datetime"},
		{"compact_fourteen", "20180512140005.jpg", "2018:05:12 14:00:05+00:00", "compact_datetime"},
		{"epoch_millis", "1526133605123.jpg", "2018:05:12 14:00:05+00:00", "epoch_millis"},
		{"epoch_seconds", "1526133605.jpg", "2018:05:12 14:00:05+00:00", "epoch_seconds"},
		{"dashed_date_only", "vacation-2018-05-12.jpg", "2018:05:12 00:00:00+00:00", "dashed_date"},
		{"compact_date_only", "20180512.jpg", "2018:05:12 00:00:00+00:00", "compact_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			canonical, _, pattern, ok := timestamp.FromName(tc.file)
			if !ok {
				t.Fatalf("FromName(%q): expected match", tc.file)
			}
			if canonical != tc.want {
				t.Fatalf("FromName(%q) = %q, want %q", tc.file, canonical, tc.want)
			}
			if pattern != tc.wantPattern {
				t.Fatalf("FromName(%q) matched %q, want %q", tc.file, pattern, tc.wantPattern)
			}
		})
	}
}

func TestFromNameNoMatch(t *testing.T) {
	for _, file := range []string{"DSC00001.ARW", "photo(2).jpg", "cat.gif", ""} {
		if _, _, _, ok := timestamp.FromName(file); ok {
			t.Errorf("FromName(%q): expected no match", file)
		}
	}
}

func TestFromNameFirstMatchDoesNotFallThrough(t *testing.T) {
	// Month 13 cannot parse; the camera prefix pattern still claims the name
	// and no later pattern is consulted.
	canonical, raw, pattern, ok := timestamp.FromName("IMG_20181340_140005.jpg")
	if ok {
		t.Fatalf("expected parse failure, got %q", canonical)
	}
	if pattern != "camera_prefix" {
		t.Fatalf("expected camera_prefix to claim the name, got %q", pattern)
	}
	if raw == "" {
		t.Fatal("expected raw fragment recorded for provenance")
	}
}
