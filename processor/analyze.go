package processor

import (
	"bytes"
	"context"
	"unicode/utf8"
)

// AnalyzeReport is the per-item value produced by the analyze operation.
type AnalyzeReport struct {
	Bytes       int  `json:"bytes"`
	Lines       int  `json:"lines"`
	BlankLines  int  `json:"blank_lines"`
	LongestLine int  `json:"longest_line"`
	Binary      bool `json:"binary"`
}

// Analyze computes basic content statistics for each item.
type Analyze struct {
	store ItemStore
}

// NewAnalyze creates an analyze processor backed by the given store.
func NewAnalyze(store ItemStore) *Analyze {
	return &Analyze{store: store}
}

// Name returns "analyze".
func (a *Analyze) Name() string { return "analyze" }

// Process resolves the item's content and returns an AnalyzeReport.
func (a *Analyze) Process(ctx context.Context, ownerID, itemID string) (any, error) {
	content, err := a.store.Content(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	report := AnalyzeReport{
		Bytes:  len(content),
		Binary: !utf8.Valid(content),
	}

	for _, line := range bytes.Split(content, []byte("\n")) {
		report.Lines++
		if len(bytes.TrimSpace(line)) == 0 {
			report.BlankLines++
		}
		if len(line) > report.LongestLine {
			report.LongestLine = len(line)
		}
	}

	return Result{Success: true, Value: report}, nil
}
