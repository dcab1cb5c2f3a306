package cluster

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"shoebox/internal/fileutil"
	"shoebox/internal/ledger"
)

const reportFileName = "relationships.json"

// ReportPath returns where the relationship report for a batch root lives.
func ReportPath(root string) string {
	return filepath.Join(ledger.StateDir(root), reportFileName)
}

// WriteReport persists the report next to the ledger. The write is atomic
// and the temp bytes are re-parsed before the rename, so a half-written
// report never replaces a good one.
func WriteReport(root string, report *Report) (string, error) {
	path := ReportPath(root)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal relationship report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	err = fileutil.WriteFileAtomicValidated(path, data, 0o644, func(written []byte) error {
		var check Report
		return json.Unmarshal(written, &check)
	})
	if err != nil {
		return "", fmt.Errorf("write relationship report: %w", err)
	}
	return path, nil
}

// ReadReport loads a previously written report.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read relationship report: %w", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse relationship report: %w", err)
	}
	return &report, nil
}
