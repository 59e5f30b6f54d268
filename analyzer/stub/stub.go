// Package stub provides canned analyzers for tests and local
// development without live AI backends.
package stub

import "context"

// Detector returns fixed findings, or an error if Err is set.
type Detector struct {
	Findings []string
	Err      error
}

func (d *Detector) SourceName() string { return "StubDetector" }

func (d *Detector) Detect(ctx context.Context, imageData []byte, filename string) ([]string, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Findings, nil
}

// Compliance returns a fixed raw response, or an error if Err is set.
type Compliance struct {
	Response string
	Err      error
}

func (c *Compliance) SourceName() string { return "StubCompliance" }

func (c *Compliance) AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}
