package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"shoebox/internal/config"
	"shoebox/internal/ledger"
	"shoebox/internal/logging"
	"shoebox/internal/queue"
	"shoebox/internal/services"
	"shoebox/internal/stage"
)

// Summary captures what a scan found, stored on the queue item.
type Summary struct {
	MediaFiles    int `json:"media_files"`
	SidecarFiles  int `json:"sidecar_files"`
	AlbumFiles    int `json:"album_files"`
	Directories   int `json:"directories"`
	NewEntries    int `json:"new_entries"`
	KnownEntries  int `json:"known_entries"`
	PrunedEntries int `json:"pruned_entries"`
}

// Scanner inventories a batch root and seeds the ledger with one entry per
// media file.
type Scanner struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewScanner constructs the scan stage handler.
func NewScanner(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Scanner {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "scanner"))
	}
	return &Scanner{store: store, cfg: cfg, logger: stageLogger}
}

func (s *Scanner) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	item.InitProgress("Scanning", "Inventorying batch root")
	logger.Info("starting scan preparation", logging.String(logging.FieldDirectory, item.RootPath))
	return nil
}

func (s *Scanner) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	info, err := os.Stat(item.RootPath)
	if err != nil {
		return services.Wrap(
			services.ErrValidation, "scan", "stat root",
			"Batch root is missing or unreadable; check the path and permissions", err)
	}
	if !info.IsDir() {
		return services.Wrap(
			services.ErrValidation, "scan", "stat root",
			fmt.Sprintf("Batch root %s is not a directory", item.RootPath), nil)
	}

	s.updateProgress(ctx, item, "Walking directory tree", 10)
	listing, err := Walk(item.RootPath)
	if err != nil {
		return services.Wrap(services.ErrTransient, "scan", "walk root", "Failed to walk batch root", err)
	}
	logger.Info(
		"scan inventory complete",
		logging.Int("media", len(listing.Media)),
		logging.Int("sidecars", len(listing.Sidecars)),
		logging.Int("albums", len(listing.Albums)),
		logging.Int("directories", listing.Directories),
	)

	led, err := ledger.Open(item.RootPath)
	if err != nil {
		return fmt.Errorf("scan: open ledger: %w", err)
	}

	s.updateProgress(ctx, item, "Seeding ledger entries", 60)
	summary := Summary{
		MediaFiles:   len(listing.Media),
		SidecarFiles: len(listing.Sidecars),
		AlbumFiles:   len(listing.Albums),
		Directories:  listing.Directories,
	}
	walked := make(map[string]bool, len(listing.Media))
	for _, file := range listing.Media {
		walked[file.Path] = true
		ext := ExtensionOf(file.Name)
		entry, known := led.Get(file.Path)
		if known {
			summary.KnownEntries++
			if entry.Size == file.Size && entry.Extension == ext {
				continue
			}
			entry.Size = file.Size
			entry.Extension = ext
		} else {
			summary.NewEntries++
			entry = &ledger.Entry{
				Path:      file.Path,
				Extension: ext,
				Size:      file.Size,
			}
		}
		if err := led.Put(entry); err != nil {
			return services.Wrap(services.ErrTransient, "scan", "seed ledger", "Failed to record media file", err)
		}
	}
	summary.PrunedEntries = led.Retain(walked)
	if summary.PrunedEntries > 0 {
		logger.Info("pruned ledger entries for vanished files", logging.Int("count", summary.PrunedEntries))
	}

	s.updateProgress(ctx, item, "Writing ledger", 90)
	if err := led.Write(); err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	encoded, err := stage.EncodeSummary("scan", summary)
	if err != nil {
		return err
	}
	item.ScanJSON = encoded
	item.LedgerPath = led.Path()
	item.SetProgressComplete("Scanning", fmt.Sprintf(
		"Scanned %d media files and %d sidecars", summary.MediaFiles, summary.SidecarFiles))
	logger.Info(
		"scan completed",
		logging.Int("new_entries", summary.NewEntries),
		logging.Int("known_entries", summary.KnownEntries),
		logging.Int("pruned_entries", summary.PrunedEntries),
	)
	return nil
}

// HealthCheck verifies scan prerequisites.
func (s *Scanner) HealthCheck(ctx context.Context) stage.Health {
	const name = "scanner"
	if s.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if s.store == nil {
		return stage.Unhealthy(name, "queue store unavailable")
	}
	return stage.Healthy(name)
}

func (s *Scanner) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, s.logger)
	updated := *item
	updated.ProgressMessage = message
	updated.ProgressPercent = percent
	if err := s.store.UpdateProgress(ctx, &updated); err != nil {
		logger.Warn("failed to persist scan progress", logging.Error(err))
		return
	}
	*item = updated
}
