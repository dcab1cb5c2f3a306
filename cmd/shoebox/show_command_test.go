package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"shoebox/internal/queue"
)

func TestCLIShowDisplaysStageSummaries(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	rootDir := filepath.Join(env.baseDir, "takeout-show")
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	item, err := env.store.NewRoot(ctx, rootDir)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	item.Status = queue.StatusCompleted
	item.ScanJSON = `{"media_files":12,"sidecar_files":10,"directories":3,"new_entries":12}`
	item.MatchJSON = `{"exact":9,"suffix_stripped":2,"unmatched":1}`
	item.ResolveJSON = `{"processed":12,"with_timestamp":11,"with_geotag":7}`
	item.ClusterJSON = `{"files":12,"temporal_clusters":4,"event_clusters":2}`
	if err := env.store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	id := strconv.FormatInt(item.ID, 10)

	out, _, err := runCLI(t, []string{"show", id}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Item #"+id)
	requireContains(t, out, "takeout-show")
	requireContains(t, out, "Media files:")
	requireContains(t, out, "Suffix stripped:")
	requireContains(t, out, "With timestamp:")
	requireContains(t, out, "Event clusters:")

	out, _, err = runCLI(t, []string{"--json", "show", id}, env.configPath)
	if err != nil {
		t.Fatalf("show --json: %v", err)
	}
	requireContains(t, out, `"media_files": 12`)
	requireContains(t, out, `"event_clusters": 2`)
	requireContains(t, out, `"status": "completed"`)
}

func TestCLIShowReportsFailureDetail(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	rootDir := filepath.Join(env.baseDir, "takeout-failed")
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	item, err := env.store.NewRoot(ctx, rootDir)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	item.SetReview("Found 2 conflicting geotags; no files were modified")
	if err := env.store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	out, _, err := runCLI(t, []string{"show", strconv.FormatInt(item.ID, 10)}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Review reason:")
	requireContains(t, out, "conflicting geotags")
}

func TestCLIShowUnknownItem(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"show", "404"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}
