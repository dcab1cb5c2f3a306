package cluster_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"shoebox/internal/cluster"
	"shoebox/internal/geo"
	"shoebox/internal/ledger"
)

func mustPoint(t *testing.T, lat, lon float64) *geo.Point {
	t.Helper()
	point, err := geo.FromSigned(lat, lon)
	if err != nil {
		t.Fatalf("FromSigned(%v, %v): %v", lat, lon, err)
	}
	return point
}

func timedEntry(path, canonical string) *ledger.Entry {
	return &ledger.Entry{Path: path, Extension: ".jpg", Timestamp: canonical}
}

func locatedEntry(t *testing.T, path string, lat, lon float64) *ledger.Entry {
	return &ledger.Entry{Path: path, Extension: ".jpg", Geotag: mustPoint(t, lat, lon)}
}

func fullEntry(t *testing.T, path, canonical string, lat, lon float64) *ledger.Entry {
	return &ledger.Entry{Path: path, Extension: ".jpg", Timestamp: canonical, Geotag: mustPoint(t, lat, lon)}
}

func newEngine() *cluster.Engine {
	return cluster.NewEngine(cluster.Thresholds{TimeSeconds: 300, DistanceKm: 0.1}, nil)
}

func TestTemporalTransitivity(t *testing.T) {
	// A and C are 400s apart, beyond the threshold, but both within 300s of
	// B, so the closure pulls all three into one cluster.
	entries := []*ledger.Entry{
		timedEntry("/t/a.jpg", "2023:06:15 12:00:00+00:00"),
		timedEntry("/t/b.jpg", "2023:06:15 12:03:20+00:00"),
		timedEntry("/t/c.jpg", "2023:06:15 12:06:40+00:00"),
	}

	report := newEngine().Compute(entries)

	want := [][]int{{0, 1, 2}}
	if !reflect.DeepEqual(report.TPrime, want) {
		t.Fatalf("TPrime = %v, want %v", report.TPrime, want)
	}
	if report.Statistics.TemporalClusters != 1 || report.Statistics.WithTimestamp != 3 {
		t.Fatalf("unexpected statistics %+v", report.Statistics)
	}
}

func TestTemporalSplitBeyondThreshold(t *testing.T) {
	entries := []*ledger.Entry{
		timedEntry("/t/a.jpg", "2023:06:15 12:00:00+00:00"),
		timedEntry("/t/b.jpg", "2023:06:15 12:03:20+00:00"),
		timedEntry("/t/far.jpg", "2023:06:15 13:00:00+00:00"),
	}

	report := newEngine().Compute(entries)

	want := [][]int{{0, 1}}
	if !reflect.DeepEqual(report.TPrime, want) {
		t.Fatalf("TPrime = %v, want %v", report.TPrime, want)
	}
}

func TestLocationClusters(t *testing.T) {
	entries := []*ledger.Entry{
		locatedEntry(t, "/l/a.jpg", 44.97000, -93.26),
		locatedEntry(t, "/l/b.jpg", 44.97045, -93.26),
		locatedEntry(t, "/l/far.jpg", 45.01500, -93.26),
	}

	report := newEngine().Compute(entries)

	want := [][]int{{0, 1}}
	if !reflect.DeepEqual(report.LPrime, want) {
		t.Fatalf("LPrime = %v, want %v", report.LPrime, want)
	}
	if report.Statistics.LocationClusters != 1 || report.Statistics.WithGeotag != 3 {
		t.Fatalf("unexpected statistics %+v", report.Statistics)
	}
}

func TestEventCompositionNeverChains(t *testing.T) {
	// A and B share only time; B and C share only location. Every pair fails
	// at least one relation, so no event cluster may form even though B is
	// co-temporal with A and co-located with C.
	entries := []*ledger.Entry{
		fullEntry(t, "/e/a.jpg", "2023:06:15 12:00:00+00:00", 10.0, 10.0),
		fullEntry(t, "/e/b.jpg", "2023:06:15 12:02:00+00:00", 20.0, 20.0),
		fullEntry(t, "/e/c.jpg", "2023:06:15 18:00:00+00:00", 20.0001, 20.0),
	}

	report := newEngine().Compute(entries)

	if !reflect.DeepEqual(report.TPrime, [][]int{{0, 1}}) {
		t.Fatalf("TPrime = %v", report.TPrime)
	}
	if !reflect.DeepEqual(report.LPrime, [][]int{{1, 2}}) {
		t.Fatalf("LPrime = %v", report.LPrime)
	}
	if len(report.EPrime) != 0 {
		t.Fatalf("no pair satisfies both relations, EPrime = %v", report.EPrime)
	}
}

func TestEventClusterOnPairSatisfyingBoth(t *testing.T) {
	entries := []*ledger.Entry{
		fullEntry(t, "/e/a.jpg", "2023:06:15 12:00:00+00:00", 44.97000, -93.26),
		fullEntry(t, "/e/b.jpg", "2023:06:15 12:01:00+00:00", 44.97045, -93.26),
		fullEntry(t, "/e/far.jpg", "2023:06:15 12:01:30+00:00", 45.01500, -93.26),
	}

	report := newEngine().Compute(entries)

	if !reflect.DeepEqual(report.EPrime, [][]int{{0, 1}}) {
		t.Fatalf("EPrime = %v", report.EPrime)
	}
	if report.Statistics.EventClusters != 1 {
		t.Fatalf("unexpected statistics %+v", report.Statistics)
	}
}

func TestExcludesFilesWithoutUsableValues(t *testing.T) {
	entries := []*ledger.Entry{
		timedEntry("/x/a.jpg", "2023:06:15 12:00:00+00:00"),
		{Path: "/x/bare.jpg", Extension: ".jpg"},
		{Path: "/x/sentinel.jpg", Extension: ".jpg", Timestamp: "0001:01:01 00:00:00+00:00"},
	}

	report := newEngine().Compute(entries)

	if report.Statistics.Files != 1 {
		t.Fatalf("only one file has a usable value, got %+v", report.Statistics)
	}
	if len(report.FileIndex) != 1 || report.FileIndex[0] != "/x/a.jpg" {
		t.Fatalf("unexpected file index %v", report.FileIndex)
	}
}

func TestIndexOrderFollowsPaths(t *testing.T) {
	entries := []*ledger.Entry{
		timedEntry("/i/z.jpg", "2023:06:15 12:00:00+00:00"),
		timedEntry("/i/a.jpg", "2023:06:15 12:01:00+00:00"),
	}

	report := newEngine().Compute(entries)

	if report.FileIndex[0] != "/i/a.jpg" || report.FileIndex[1] != "/i/z.jpg" {
		t.Fatalf("index should follow path order, got %v", report.FileIndex)
	}
}

func TestDefaultThresholds(t *testing.T) {
	engine := cluster.NewEngine(cluster.Thresholds{}, nil)
	report := engine.Compute(nil)
	if report.Thresholds.TimeSeconds != cluster.DefaultTimeSeconds ||
		report.Thresholds.DistanceKm != cluster.DefaultDistanceKm {
		t.Fatalf("unexpected thresholds %+v", report.Thresholds)
	}
}

func TestWriteAndReadReport(t *testing.T) {
	root := t.TempDir()
	entries := []*ledger.Entry{
		fullEntry(t, filepath.Join(root, "a.jpg"), "2023:06:15 12:00:00+00:00", 44.97000, -93.26),
		fullEntry(t, filepath.Join(root, "b.jpg"), "2023:06:15 12:01:00+00:00", 44.97045, -93.26),
	}
	report := newEngine().Compute(entries)

	path, err := cluster.WriteReport(root, report)
	if err != nil {
		t.Fatalf("WriteReport returned error: %v", err)
	}
	if path != cluster.ReportPath(root) {
		t.Fatalf("unexpected report path %s", path)
	}

	loaded, err := cluster.ReadReport(path)
	if err != nil {
		t.Fatalf("ReadReport returned error: %v", err)
	}
	if !reflect.DeepEqual(loaded.EPrime, report.EPrime) {
		t.Fatalf("EPrime did not round-trip: %v vs %v", loaded.EPrime, report.EPrime)
	}
	if loaded.FileIndex[0] != report.FileIndex[0] {
		t.Fatalf("file index did not round-trip: %v", loaded.FileIndex)
	}
	if loaded.Thresholds != report.Thresholds {
		t.Fatalf("thresholds did not round-trip: %+v", loaded.Thresholds)
	}
}
