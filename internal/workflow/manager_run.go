package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shoebox/internal/logging"
)

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.statusOrder) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	logger := m.runnerLogger()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		m.reclaimStale(ctx, logger)

		item, err := m.store.NextForStatuses(ctx, m.statusOrder...)
		if err != nil {
			m.handleNextItemError(ctx, logger, err)
			continue
		}
		if item == nil {
			m.waitForItemOrShutdown(ctx)
			continue
		}

		if err := m.processItem(ctx, logger, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

// RunUntilIdle processes queue items on the calling goroutine until no
// actionable work remains, then returns. One-shot CLI processing uses this
// instead of Start.
func (m *Manager) RunUntilIdle(ctx context.Context) error {
	m.mu.RLock()
	configured := len(m.statusOrder) > 0
	m.mu.RUnlock()
	if !configured {
		return errors.New("workflow stages not configured")
	}
	logger := m.runnerLogger()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.reclaimStale(ctx, logger)

		item, err := m.store.NextForStatuses(ctx, m.statusOrder...)
		if err != nil {
			return fmt.Errorf("fetch next queue item: %w", err)
		}
		if item == nil {
			return nil
		}

		startStatus := item.Status
		if err := m.processItem(ctx, logger, item); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			current, getErr := m.store.GetByID(ctx, item.ID)
			if getErr != nil {
				return fmt.Errorf("inspect item after stage failure: %w", getErr)
			}
			if current == nil || current.Status == startStatus {
				return fmt.Errorf("item #%d stalled in %s: %w", item.ID, startStatus, err)
			}
		}
	}
}

func (m *Manager) reclaimStale(ctx context.Context, logger *slog.Logger) {
	if err := m.heartbeat.ReclaimStale(ctx, logger); err != nil {
		logger.Warn("reclaim stale processing failed; stuck items may remain",
			logging.Error(err),
			logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
	}
}

func (m *Manager) handleNextItemError(ctx context.Context, logger *slog.Logger, err error) {
	m.setLastError(err)
	logger.Error("failed to fetch next queue item",
		logging.Error(err),
		logging.String(logging.FieldEventType, "queue_fetch_failed"),
		logging.String(logging.FieldErrorHint, "check queue database access"),
	)
	select {
	case <-ctx.Done():
		return
	case <-time.After(time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second):
	}
}

func (m *Manager) waitForItemOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(m.pollInterval):
	}
}
