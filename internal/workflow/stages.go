package workflow

import (
	"log/slog"

	"shoebox/internal/cluster"
	"shoebox/internal/config"
	"shoebox/internal/match"
	"shoebox/internal/queue"
	"shoebox/internal/resolve"
	"shoebox/internal/scan"
	"shoebox/internal/stage"
)

// StageSet carries the handlers for each pipeline stage. Nil entries are
// skipped, which lets tests register a subset of the pipeline; items then
// rest at the missing stage's start status.
type StageSet struct {
	Scan    stage.Handler
	Match   stage.Handler
	Resolve stage.Handler
	Cluster stage.Handler
}

// DefaultStageSet builds the production pipeline handlers.
func DefaultStageSet(cfg *config.Config, store *queue.Store, logger *slog.Logger) StageSet {
	return StageSet{
		Scan:    scan.NewScanner(cfg, store, logger),
		Match:   match.NewHandler(cfg, store, logger),
		Resolve: resolve.NewHandler(cfg, store, logger),
		Cluster: cluster.NewHandler(cfg, store, logger),
	}
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// ConfigureStages registers the concrete stage handlers the workflow will run.
func (m *Manager) ConfigureStages(set StageSet) {
	stages := make([]pipelineStage, 0, 4)
	if set.Scan != nil {
		stages = append(stages, pipelineStage{
			name:             "scan",
			handler:          set.Scan,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusScanning,
			doneStatus:       queue.StatusScanned,
		})
	}
	if set.Match != nil {
		stages = append(stages, pipelineStage{
			name:             "match",
			handler:          set.Match,
			startStatus:      queue.StatusScanned,
			processingStatus: queue.StatusMatching,
			doneStatus:       queue.StatusMatched,
		})
	}
	if set.Resolve != nil {
		stages = append(stages, pipelineStage{
			name:             "resolve",
			handler:          set.Resolve,
			startStatus:      queue.StatusMatched,
			processingStatus: queue.StatusResolving,
			doneStatus:       queue.StatusResolved,
		})
	}
	if set.Cluster != nil {
		stages = append(stages, pipelineStage{
			name:             "cluster",
			handler:          set.Cluster,
			startStatus:      queue.StatusResolved,
			processingStatus: queue.StatusClustering,
			doneStatus:       queue.StatusCompleted,
		})
	}

	stageByStart := make(map[queue.Status]pipelineStage, len(stages))
	statusOrder := make([]queue.Status, 0, len(stages))
	processing := make([]queue.Status, 0, len(stages))
	for _, stg := range stages {
		stageByStart[stg.startStatus] = stg
		statusOrder = append(statusOrder, stg.startStatus)
		processing = append(processing, stg.processingStatus)
	}

	m.mu.Lock()
	m.stages = stages
	m.stageByStart = stageByStart
	m.statusOrder = statusOrder
	m.processingStatuses = processing
	m.mu.Unlock()
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stg, ok := m.stageByStart[status]
	return stg, ok
}
