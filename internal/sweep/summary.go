package sweep

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// writeSummary persists the sweep summary inside the run directory.
func writeSummary(runDir string, sum *Summary) error {
	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	path := filepath.Join(runDir, SummaryFilename)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// LoadSummary reads a run directory's summary.
func LoadSummary(runDir string) (*Summary, error) {
	data, err := os.ReadFile(filepath.Join(runDir, SummaryFilename))
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}
	var sum Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	return &sum, nil
}
