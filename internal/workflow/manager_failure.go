package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shoebox/internal/logging"
	"shoebox/internal/queue"
	"shoebox/internal/services"
)

func (m *Manager) handleStageFailure(ctx context.Context, stg pipelineStage, item *queue.Item, stageErr error) {
	base := m.logger
	if base == nil {
		base = logging.NewNop()
	}
	logger := logging.WithContext(ctx, base.With(logging.String(logging.FieldComponent, "workflow-manager")))

	status := services.FailureStatus(stageErr)
	message := failureMessage(stg.name, stageErr)
	if status == queue.StatusReview {
		item.SetReview(message)
	} else {
		item.SetFailed(message)
	}

	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.Alert("stage_failure"),
		logging.String(logging.FieldStage, stg.name),
		logging.String("resolved_status", string(status)),
		logging.String("error_message", message),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutting down, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastItem(item)
	if status == queue.StatusReview {
		m.notifyReviewRequired(ctx, item)
	} else {
		m.notifyStageError(ctx, stg.name, item, stageErr)
	}
	m.checkQueueCompletion(ctx)
}

func failureMessage(stageName string, stageErr error) string {
	if stageErr == nil {
		if stageName == "" {
			return "workflow failed without error detail"
		}
		return fmt.Sprintf("%s failed without error detail", stageName)
	}
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = fmt.Sprintf("%s failed", stageName)
	}
	return message
}
