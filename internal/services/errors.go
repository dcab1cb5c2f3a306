package services

import (
	"errors"
	"fmt"
	"strings"

	"shoebox/internal/queue"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")

	// ErrRecoverableParse marks a single candidate value that failed to
	// parse. Callers skip the candidate and keep resolving; it never fails
	// a batch on its own.
	ErrRecoverableParse = errors.New("recoverable parse error")

	// ErrConflictingGeotag marks coordinates whose sign and cardinal
	// reference disagree, or two embedded encodings that contradict each
	// other. Geotag resolution for the file is aborted; timestamps are
	// unaffected.
	ErrConflictingGeotag = errors.New("conflicting geotag")

	// ErrLedgerWrite marks a failed atomic ledger write. The previous
	// on-disk ledger is preserved and the stage fails loudly.
	ErrLedgerWrite = errors.New("ledger write failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a stage error to the queue status the workflow manager
// should persist after the stage fails.
func FailureStatus(err error) queue.Status {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return queue.StatusReview
	default:
		return queue.StatusFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
