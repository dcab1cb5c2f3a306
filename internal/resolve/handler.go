package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"shoebox/internal/config"
	"shoebox/internal/ledger"
	"shoebox/internal/logging"
	"shoebox/internal/media/exif"
	"shoebox/internal/queue"
	"shoebox/internal/services"
	"shoebox/internal/stage"
)

// Summary captures resolver outcomes, stored on the queue item.
type Summary struct {
	Processed       int `json:"processed"`
	AlreadyResolved int `json:"already_resolved"`
	WithTimestamp   int `json:"with_timestamp"`
	WithGeotag      int `json:"with_geotag"`
	Unresolved      int `json:"unresolved"`
	GeotagConflicts int `json:"geotag_conflicts"`
	ExtractFailures int `json:"extract_failures"`
	Embedded        int `json:"embedded"`
	SidecarsRemoved int `json:"sidecars_removed"`
}

// Handler runs metadata resolution for every unprocessed ledger entry of a
// batch root.
type Handler struct {
	store     *queue.Store
	cfg       *config.Config
	logger    *slog.Logger
	extractor Extractor
}

// HandlerOption configures the handler.
type HandlerOption func(*Handler)

// WithExtractor injects a prebuilt extraction collaborator. Without it the
// handler starts an exiftool client per run.
func WithExtractor(extractor Extractor) HandlerOption {
	return func(h *Handler) {
		h.extractor = extractor
	}
}

// NewHandler constructs the resolve stage handler.
func NewHandler(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...HandlerOption) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "resolver"))
	}
	h := &Handler{store: store, cfg: cfg, logger: stageLogger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)
	item.InitProgress("Resolving", "Resolving timestamps and geotags")
	logger.Info("starting resolve preparation", logging.String(logging.FieldDirectory, item.RootPath))
	return nil
}

func (h *Handler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	led, err := ledger.Open(item.RootPath)
	if err != nil {
		return fmt.Errorf("resolve: open ledger: %w", err)
	}
	if led.Len() == 0 {
		return services.Wrap(
			services.ErrValidation, "resolve", "check ledger",
			"Ledger is empty; run the scan stage before resolving", nil)
	}

	summary := Summary{}
	entries := led.Entries()
	pending := entries[:0]
	for _, entry := range entries {
		if entry.ResolvedAt != "" {
			summary.AlreadyResolved++
			continue
		}
		pending = append(pending, entry)
	}

	extractor := h.extractor
	if extractor == nil {
		client, err := exif.New(
			h.cfg.ExiftoolBinary(),
			h.cfg.Resolver.ExtractAttempts,
			h.cfg.Resolver.ExtractBackoffMS,
		)
		if err != nil {
			return services.Wrap(
				services.ErrExternalTool, "resolve", "start exiftool",
				"Failed to start exiftool; install it or set exiftool.binary", err)
		}
		defer client.Close()
		extractor = client
	}

	h.updateProgress(ctx, item, fmt.Sprintf("Resolving metadata for %d files", len(pending)), 10)

	resolver := NewResolver(extractor, Options{
		Workers:         h.cfg.Resolver.Workers,
		LedgerBatchSize: h.cfg.Resolver.LedgerBatchSize,
		KeepSidecars:    h.cfg.Resolver.KeepSidecars,
		EmbedCanonical:  h.cfg.Resolver.EmbedCanonical,
	}, h.logger)

	stats, err := resolver.Run(ctx, led, pending, func(done, total int) {
		if done%50 == 0 || done == total {
			percent := 10 + 80*float64(done)/float64(total)
			h.updateProgress(ctx, item, fmt.Sprintf("Resolved %d of %d files", done, total), percent)
		}
	})
	if err != nil {
		return err
	}

	summary.Processed = stats.Processed
	summary.WithTimestamp = stats.WithTimestamp
	summary.WithGeotag = stats.WithGeotag
	summary.Unresolved = stats.Unresolved
	summary.GeotagConflicts = stats.GeotagConflicts
	summary.ExtractFailures = stats.ExtractFailures
	summary.Embedded = stats.Embedded
	summary.SidecarsRemoved = stats.SidecarsRemoved

	encoded, err := stage.EncodeSummary("resolve", summary)
	if err != nil {
		return err
	}
	item.ResolveJSON = encoded
	item.SetProgressComplete("Resolving", fmt.Sprintf(
		"Resolved %d timestamps and %d geotags across %d files",
		summary.WithTimestamp, summary.WithGeotag, summary.Processed))
	logger.Info(
		"resolve completed",
		logging.Int("processed", summary.Processed),
		logging.Int("already_resolved", summary.AlreadyResolved),
		logging.Int("with_timestamp", summary.WithTimestamp),
		logging.Int("with_geotag", summary.WithGeotag),
		logging.Int("geotag_conflicts", summary.GeotagConflicts),
		logging.Int("extract_failures", summary.ExtractFailures),
	)
	return nil
}

// HealthCheck verifies resolver prerequisites, including a reachable
// exiftool when no collaborator was injected.
func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	const name = "resolver"
	if h.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if h.store == nil {
		return stage.Unhealthy(name, "queue store unavailable")
	}
	if h.extractor == nil {
		if _, err := exec.LookPath(h.cfg.ExiftoolBinary()); err != nil {
			return stage.Unhealthy(name, fmt.Sprintf("exiftool not found: %v", err))
		}
	}
	return stage.Healthy(name)
}

func (h *Handler) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, h.logger)
	updated := *item
	updated.ProgressMessage = message
	updated.ProgressPercent = percent
	if err := h.store.UpdateProgress(ctx, &updated); err != nil {
		logger.Warn("failed to persist resolve progress", logging.Error(err))
		return
	}
	*item = updated
}
