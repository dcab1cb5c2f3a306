package main

import (
	"time"

	"shoebox/internal/queue"
)

// queueItemView is the JSON projection of a queue item.
type queueItemView struct {
	ID                int64   `json:"id"`
	Label             string  `json:"label"`
	RootPath          string  `json:"root_path"`
	Status            string  `json:"status"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
	ProgressStage     string  `json:"progress_stage,omitempty"`
	ProgressPercent   float64 `json:"progress_percent,omitempty"`
	ProgressMessage   string  `json:"progress_message,omitempty"`
	ErrorMessage      string  `json:"error_message,omitempty"`
	NeedsReview       bool    `json:"needs_review,omitempty"`
	ReviewReason      string  `json:"review_reason,omitempty"`
	LedgerPath        string  `json:"ledger_path,omitempty"`
	RelationshipsPath string  `json:"relationships_path,omitempty"`
}

func queueItemViewOf(item *queue.Item) queueItemView {
	if item == nil {
		return queueItemView{}
	}
	return queueItemView{
		ID:                item.ID,
		Label:             item.Label,
		RootPath:          item.RootPath,
		Status:            string(item.Status),
		CreatedAt:         item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         item.UpdatedAt.UTC().Format(time.RFC3339),
		ProgressStage:     item.ProgressStage,
		ProgressPercent:   item.ProgressPercent,
		ProgressMessage:   item.ProgressMessage,
		ErrorMessage:      item.ErrorMessage,
		NeedsReview:       item.NeedsReview,
		ReviewReason:      item.ReviewReason,
		LedgerPath:        item.LedgerPath,
		RelationshipsPath: item.RelationshipsPath,
	}
}

func queueItemViews(items []*queue.Item) []queueItemView {
	views := make([]queueItemView, 0, len(items))
	for _, item := range items {
		views = append(views, queueItemViewOf(item))
	}
	return views
}
