// Package analyzer implements the hybrid billboard analysis: one
// uploaded image is fanned out to an out-of-process object detector and
// a generative compliance analyzer, and the two results are merged into
// one normalized report.
package analyzer

import (
	"context"
	"fmt"
)

// DetectorClient is the fixed-format object detector. It returns
// plain-text violation descriptions with no severity or type structure.
type DetectorClient interface {
	SourceName() string
	Detect(ctx context.Context, imageData []byte, filename string) ([]string, error)
}

// ComplianceClient is the generative compliance analyzer. It returns
// the raw model output text, expected to contain the analysis JSON.
type ComplianceClient interface {
	SourceName() string
	AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (string, error)
}

// BackendError reports which sub-analyzer failed a hybrid analysis.
// Either sub-analyzer failing aborts the whole operation; no partial
// report is ever persisted.
type BackendError struct {
	Analyzer string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s analysis failed: %v", e.Analyzer, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
