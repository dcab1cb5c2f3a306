package cluster

import (
	"context"
	"fmt"
	"log/slog"

	"shoebox/internal/config"
	"shoebox/internal/ledger"
	"shoebox/internal/logging"
	"shoebox/internal/queue"
	"shoebox/internal/services"
	"shoebox/internal/stage"
)

// Summary captures clustering outcomes, stored on the queue item.
type Summary struct {
	Files            int `json:"files"`
	Excluded         int `json:"excluded"`
	WithTimestamp    int `json:"with_timestamp"`
	WithGeotag       int `json:"with_geotag"`
	TemporalClusters int `json:"temporal_clusters"`
	LocationClusters int `json:"location_clusters"`
	EventClusters    int `json:"event_clusters"`
}

// Handler derives the relationship partitions for a batch root and writes
// the report next to the ledger.
type Handler struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandler constructs the cluster stage handler.
func NewHandler(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Handler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "cluster"))
	}
	return &Handler{store: store, cfg: cfg, logger: stageLogger}
}

func (h *Handler) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)
	item.InitProgress("Clustering", "Deriving relationship clusters")
	logger.Info("starting cluster preparation", logging.String(logging.FieldDirectory, item.RootPath))
	return nil
}

func (h *Handler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	led, err := ledger.Open(item.RootPath)
	if err != nil {
		return fmt.Errorf("cluster: open ledger: %w", err)
	}
	if led.Len() == 0 {
		return services.Wrap(
			services.ErrValidation, "cluster", "check ledger",
			"Ledger is empty; run the scan stage before clustering", nil)
	}

	entries := led.Entries()
	h.updateProgress(ctx, item, fmt.Sprintf("Clustering %d files", len(entries)), 20)

	engine := NewEngine(Thresholds{
		TimeSeconds: h.cfg.Cluster.TimeThresholdSeconds,
		DistanceKm:  h.cfg.Cluster.DistanceThresholdKm,
	}, h.logger)
	report := engine.Compute(entries)

	h.updateProgress(ctx, item, "Writing relationship report", 70)
	path, err := WriteReport(item.RootPath, report)
	if err != nil {
		return services.Wrap(
			services.ErrTransient, "cluster", "write report",
			"Failed to write relationship report", err)
	}
	item.RelationshipsPath = path

	summary := Summary{
		Files:            report.Statistics.Files,
		Excluded:         led.Len() - report.Statistics.Files,
		WithTimestamp:    report.Statistics.WithTimestamp,
		WithGeotag:       report.Statistics.WithGeotag,
		TemporalClusters: report.Statistics.TemporalClusters,
		LocationClusters: report.Statistics.LocationClusters,
		EventClusters:    report.Statistics.EventClusters,
	}
	encoded, err := stage.EncodeSummary("cluster", summary)
	if err != nil {
		return err
	}
	item.ClusterJSON = encoded
	item.SetProgressComplete("Clustering", fmt.Sprintf(
		"Derived %d temporal, %d location, and %d event clusters over %d files",
		summary.TemporalClusters, summary.LocationClusters, summary.EventClusters, summary.Files))
	logger.Info(
		"cluster completed",
		logging.Int("files", summary.Files),
		logging.Int("excluded", summary.Excluded),
		logging.Int("temporal_clusters", summary.TemporalClusters),
		logging.Int("location_clusters", summary.LocationClusters),
		logging.Int("event_clusters", summary.EventClusters),
		logging.String(logging.FieldFile, path),
	)
	return nil
}

// HealthCheck verifies clustering prerequisites.
func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	const name = "cluster"
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
		logger.Warn("failed to persist cluster progress", logging.Error(err))
		return
	}
	*item = updated
}
