package stage

import (
	"strings"

	json "github.com/goccy/go-json"

	"shoebox/internal/services"
)

// DecodeSummary parses the JSON summary blob a previous stage stored on the
// queue item. An empty blob yields the zero value. On failure it returns a
// services.ErrValidation suitable for stage Execute methods.
func DecodeSummary[T any](stageName, raw string) (T, error) {
	var out T
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return out, services.Wrap(
			services.ErrValidation, stageName, "decode stage summary",
			"stored summary missing or invalid; rerun the previous stage", err)
	}
	return out, nil
}

// EncodeSummary marshals a stage summary for storage on the queue item.
func EncodeSummary(stageName string, value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", services.Wrap(
			services.ErrTransient, stageName, "encode stage summary",
			"could not serialize stage summary", err)
	}
	return string(data), nil
}
