package match

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"shoebox/internal/config"
	"shoebox/internal/ledger"
	"shoebox/internal/logging"
	"shoebox/internal/queue"
	"shoebox/internal/scan"
	"shoebox/internal/services"
	"shoebox/internal/stage"
)

// Summary captures matcher outcomes, stored on the queue item.
type Summary struct {
	Exact             int `json:"exact"`
	SuffixStripped    int `json:"suffix_stripped"`
	CopiedFromSibling int `json:"copied_from_sibling"`
	TruncatedName     int `json:"truncated_name"`
	Unmatched         int `json:"unmatched"`
	OrphanSidecars    int `json:"orphan_sidecars"`
	JunkDirectories   int `json:"junk_directories"`
	CanonicalRenames  int `json:"canonical_renames"`
	AlreadyMatched    int `json:"already_matched"`
}

// Handler runs the sidecar matching passes for a batch root and records the
// outcome on every ledger entry.
type Handler struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandler constructs the match stage handler.
func NewHandler(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "matcher"))
	}
	return &Handler{store: store, cfg: cfg, logger: stageLogger}
}

func (h *Handler) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)
	item.InitProgress("Matching", "Pairing media with sidecars")
	logger.Info("starting match preparation", logging.String(logging.FieldDirectory, item.RootPath))
	return nil
}

func (h *Handler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	listing, err := scan.Walk(item.RootPath)
	if err != nil {
		return services.Wrap(services.ErrTransient, "match", "walk root", "Failed to walk batch root", err)
	}

	led, err := ledger.Open(item.RootPath)
	if err != nil {
		return fmt.Errorf("match: open ledger: %w", err)
	}
	if led.Len() == 0 && len(listing.Media) > 0 {
		return services.Wrap(
			services.ErrValidation, "match", "check ledger",
			"Ledger is empty; run the scan stage before matching", nil)
	}

	summary := Summary{}

	// Already-claimed files stay out of the pools so reruns cannot disturb
	// settled matches or re-consume their sidecars.
	consumedSidecars := make(map[string]bool)
	media := make([]scan.File, 0, len(listing.Media))
	for _, f := range listing.Media {
		if entry, ok := led.Get(f.Path); ok && entry.Matched() {
			summary.AlreadyMatched++
			if entry.Sidecar != "" {
				consumedSidecars[entry.Sidecar] = true
			}
			continue
		}
		media = append(media, f)
	}
	sidecars := make([]scan.File, 0, len(listing.Sidecars))
	for _, f := range listing.Sidecars {
		if !consumedSidecars[f.Path] {
			sidecars = append(sidecars, f)
		}
	}

	h.updateProgress(ctx, item, fmt.Sprintf("Running match passes over %d files", len(media)+len(sidecars)), 20)
	matcher := NewMatcher(h.cfg.Matcher.PrefixLength, h.cfg.Matcher.SuffixMargin, h.logger)
	result := matcher.Run(media, sidecars)
	logger.Info("match passes complete", logging.String("result", result.String()))

	h.updateProgress(ctx, item, "Recording matches in ledger", 70)
	for _, pair := range result.Pairs {
		if err := h.record(led, pair.MediaPath, func(entry *ledger.Entry) {
			entry.Sidecar = pair.SidecarPath
			entry.MatchTier = pair.Tier
			entry.Provenance = append(entry.Provenance, ledger.Provenance{
				Stage:  "match",
				Detail: fmt.Sprintf("%s sidecar %s", pair.Tier, filepath.Base(pair.SidecarPath)),
			})
		}); err != nil {
			return err
		}
	}
	for _, path := range result.LeftoverMedia {
		if err := h.record(led, path, func(entry *ledger.Entry) {
			entry.MatchTier = TierUnmatched
			entry.Provenance = append(entry.Provenance, ledger.Provenance{
				Stage:  "match",
				Detail: "no sidecar found after all passes",
			})
		}); err != nil {
			return err
		}
	}
	for _, path := range result.JunkMedia {
		if err := h.record(led, path, func(entry *ledger.Entry) {
			entry.MatchTier = TierUnmatched
			entry.Provenance = append(entry.Provenance, ledger.Provenance{
				Stage:  "match",
				Detail: fmt.Sprintf("junk directory %s has no pairable content", filepath.Base(filepath.Dir(path))),
			})
		}); err != nil {
			return err
		}
	}
	for _, path := range result.OrphanSidecars {
		logger.Debug("orphaned sidecar", logging.String(logging.FieldFile, path))
	}

	if err := led.Write(); err != nil {
		return fmt.Errorf("match: %w", err)
	}

	tiers := result.TierCounts()
	summary.Exact = tiers[TierExact]
	summary.SuffixStripped = tiers[TierSuffixStripped]
	summary.CopiedFromSibling = tiers[TierCopiedFromSibling]
	summary.TruncatedName = tiers[TierTruncatedName]
	summary.Unmatched = len(result.LeftoverMedia) + len(result.JunkMedia)
	summary.OrphanSidecars = len(result.OrphanSidecars)
	summary.JunkDirectories = len(result.JunkDirs)
	summary.CanonicalRenames = result.Renamed

	encoded, err := stage.EncodeSummary("match", summary)
	if err != nil {
		return err
	}
	item.MatchJSON = encoded
	item.SetProgressComplete("Matching", fmt.Sprintf(
		"Matched %d pairs, %d unmatched, %d junk directories",
		len(result.Pairs), summary.Unmatched, summary.JunkDirectories))
	logger.Info(
		"match completed",
		logging.Int("pairs", len(result.Pairs)),
		logging.Int("unmatched", summary.Unmatched),
		logging.Int("orphan_sidecars", summary.OrphanSidecars),
		logging.Int("junk_directories", summary.JunkDirectories),
		logging.Int("already_matched", summary.AlreadyMatched),
	)
	return nil
}

func (h *Handler) record(led *ledger.Ledger, path string, apply func(*ledger.Entry)) error {
	entry, ok := led.Get(path)
	if !ok {
		entry = &ledger.Entry{Path: path, Extension: scan.ExtensionOf(path)}
	}
	apply(entry)
	if err := led.Put(entry); err != nil {
		return services.Wrap(services.ErrTransient, "match", "record match", "Failed to update ledger entry", err)
	}
	return nil
}

// HealthCheck verifies matcher prerequisites.
func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	const name = "matcher"
	if h.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if h.store == nil {
		return stage.Unhealthy(name, "queue store unavailable")
	}
	return stage.Healthy(name)
}

func (h *Handler) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, h.logger)
	updated := *item
	updated.ProgressMessage = message
	updated.ProgressPercent = percent
	if err := h.store.UpdateProgress(ctx, &updated); err != nil {
		logger.Warn("failed to persist match progress", logging.Error(err))
		return
	}
	*item = updated
}
