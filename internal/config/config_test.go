package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"shoebox/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "shoebox")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.LogDir != filepath.Join(wantState, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Matcher.PrefixLength != 43 {
		t.Fatalf("unexpected prefix length: %d", cfg.Matcher.PrefixLength)
	}
	if cfg.Matcher.SuffixMargin != 4 {
		t.Fatalf("unexpected suffix margin: %d", cfg.Matcher.SuffixMargin)
	}
	if cfg.Cluster.TimeThresholdSeconds != 300 {
		t.Fatalf("unexpected time threshold: %v", cfg.Cluster.TimeThresholdSeconds)
	}
	if cfg.Cluster.DistanceThresholdKm != 0.1 {
		t.Fatalf("unexpected distance threshold: %v", cfg.Cluster.DistanceThresholdKm)
	}
	if cfg.Resolver.ExtractAttempts != 3 {
		t.Fatalf("unexpected extract attempts: %d", cfg.Resolver.ExtractAttempts)
	}
	if !cfg.Resolver.EmbedCanonical {
		t.Fatal("expected embed_canonical enabled by default")
	}
	if cfg.Resolver.KeepSidecars {
		t.Fatal("expected keep_sidecars disabled by default")
	}
	if cfg.ExiftoolBinary() != "exiftool" {
		t.Fatalf("unexpected exiftool binary: %q", cfg.ExiftoolBinary())
	}
	if cfg.QueueDatabasePath() != filepath.Join(wantState, "queue.db") {
		t.Fatalf("unexpected queue db path: %q", cfg.QueueDatabasePath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "shoebox.toml")

	type payload struct {
		Matcher struct {
			PrefixLength int `toml:"prefix_length"`
			SuffixMargin int `toml:"suffix_margin"`
		} `toml:"matcher"`
		Cluster struct {
			TimeThresholdSeconds float64 `toml:"time_threshold_seconds"`
		} `toml:"cluster"`
		Workflow struct {
			HeartbeatInterval int `toml:"heartbeat_interval"`
			HeartbeatTimeout  int `toml:"heartbeat_timeout"`
		} `toml:"workflow"`
	}
	custom := payload{}
	custom.Matcher.PrefixLength = 50
	custom.Matcher.SuffixMargin = 6
	custom.Cluster.TimeThresholdSeconds = 120
	custom.Workflow.HeartbeatInterval = 20
	custom.Workflow.HeartbeatTimeout = 200
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Matcher.PrefixLength != 50 {
		t.Fatalf("expected prefix length 50, got %d", cfg.Matcher.PrefixLength)
	}
	if cfg.Matcher.SuffixMargin != 6 {
		t.Fatalf("expected suffix margin 6, got %d", cfg.Matcher.SuffixMargin)
	}
	if cfg.Cluster.TimeThresholdSeconds != 120 {
		t.Fatalf("expected time threshold 120, got %v", cfg.Cluster.TimeThresholdSeconds)
	}
	if cfg.Workflow.HeartbeatInterval != 20 {
		t.Fatalf("expected heartbeat interval 20, got %d", cfg.Workflow.HeartbeatInterval)
	}
	if cfg.Workflow.HeartbeatTimeout != 200 {
		t.Fatalf("expected heartbeat timeout 200, got %d", cfg.Workflow.HeartbeatTimeout)
	}
	if cfg.Cluster.DistanceThresholdKm != 0.1 {
		t.Fatalf("expected untouched distance threshold, got %v", cfg.Cluster.DistanceThresholdKm)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "prefix_length") {
		t.Fatalf("sample config missing matcher section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Matcher.PrefixLength != 43 {
		t.Fatalf("sample prefix length should match default, got %d", cfg.Matcher.PrefixLength)
	}
	if cfg.Cluster.DistanceThresholdKm != 0.1 {
		t.Fatalf("sample distance threshold should match default, got %v", cfg.Cluster.DistanceThresholdKm)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Matcher.PrefixLength = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero prefix length")
	}

	cfg = config.Default()
	cfg.Resolver.ExtractAttempts = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero extract attempts")
	}

	cfg = config.Default()
	cfg.Cluster.TimeThresholdSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero time threshold")
	}

	cfg = config.Default()
	cfg.Workflow.HeartbeatInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for heartbeat interval")
	}

	cfg = config.Default()
	cfg.Workflow.HeartbeatTimeout = cfg.Workflow.HeartbeatInterval
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when timeout <= interval")
	}

	cfg = config.Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}
