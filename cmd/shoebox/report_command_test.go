package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"shoebox/internal/geo"
	"shoebox/internal/ledger"
	"shoebox/internal/match"
)

func TestCLIReportSummarizesLedger(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	rootDir := filepath.Join(env.baseDir, "takeout-report")
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	item, err := env.store.NewRoot(ctx, rootDir)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}

	point, err := geo.FromSigned(37.7749, -122.4194)
	if err != nil {
		t.Fatalf("FromSigned: %v", err)
	}
	led, err := ledger.Open(rootDir)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	entries := []*ledger.Entry{
		{
			Path:      "IMG_0001.jpg",
			Extension: ".jpg",
			Size:      1024,
			Sidecar:   "IMG_0001.jpg.supplemental-metadata.json",
			MatchTier: match.TierExact,
			Timestamp: "2023-07-04T12:00:00Z",
			Geotag:    point,
		},
		{
			Path:      "IMG_0002.jpg",
			Extension: ".jpg",
			Size:      2048,
			MatchTier: match.TierUnmatched,
		},
	}
	for _, entry := range entries {
		if err := led.Put(entry); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if err := led.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}

	id := strconv.FormatInt(item.ID, 10)

	out, _, err := runCLI(t, []string{"report", id}, env.configPath)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	requireContains(t, out, "Ledger for "+rootDir)
	requireContains(t, out, "Entries:")
	requireContains(t, out, match.TierExact)
	requireContains(t, out, match.TierUnmatched)

	out, _, err = runCLI(t, []string{"report", id, "--full"}, env.configPath)
	if err != nil {
		t.Fatalf("report --full: %v", err)
	}
	requireContains(t, out, "IMG_0001.jpg")
	requireContains(t, out, "2023-07-04T12:00:00Z")

	out, _, err = runCLI(t, []string{"--json", "report", id}, env.configPath)
	if err != nil {
		t.Fatalf("report --json: %v", err)
	}
	requireContains(t, out, `"entries": 2`)
	requireContains(t, out, `"resolved": 1`)
	requireContains(t, out, `"with_geotag": 1`)
}

func TestCLIReportWithoutLedgerFails(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	rootDir := filepath.Join(env.baseDir, "takeout-empty")
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	item, err := env.store.NewRoot(ctx, rootDir)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}

	_, _, err = runCLI(t, []string{"report", strconv.FormatInt(item.ID, 10)}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no ledger") {
		t.Fatalf("expected missing ledger error, got %v", err)
	}
}
