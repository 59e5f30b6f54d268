package analyzer

import (
	"context"
	"time"

	"billboard-service/analyzer/parser"
	"billboard-service/metrics"
	"billboard-service/models"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"
)

// ReportStore persists analysis outcomes.
type ReportStore interface {
	SaveReport(ctx context.Context, report *models.Report) error
}

// Publisher forwards persisted reports to downstream consumers.
// Best-effort: a nil publisher or a publish failure never affects the
// analysis outcome.
type Publisher interface {
	Publish(message interface{}) error
}

// Request carries one image analysis request through the service.
type Request struct {
	UserID    string
	ImageData []byte
	MimeType  string
	Filename  string
	ImageURL  string
	Latitude  float64
	Longitude float64
}

// Service runs the hybrid analysis for one uploaded image.
type Service struct {
	detector   DetectorClient
	compliance ComplianceClient
	reports    ReportStore
	publisher  Publisher
	timeout    time.Duration
}

// NewService creates a hybrid analysis service. timeout bounds the
// whole fan-out; a hung analyzer cancels the other and fails the
// request instead of stalling it indefinitely.
func NewService(detector DetectorClient, compliance ComplianceClient, reports ReportStore, publisher Publisher, timeout time.Duration) *Service {
	return &Service{
		detector:   detector,
		compliance: compliance,
		reports:    reports,
		publisher:  publisher,
		timeout:    timeout,
	}
}

// Analyze fans the image out to both analyzers, waits for both to
// complete, merges their outputs and persists the resulting report.
// Either analyzer failing aborts the operation with a *BackendError
// and nothing is persisted.
func (s *Service) Analyze(ctx context.Context, req Request) (*models.Report, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var findings []string
	var rawAnalysis string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := s.detector.Detect(gctx, req.ImageData, req.Filename)
		if err != nil {
			return &BackendError{Analyzer: s.detector.SourceName(), Err: err}
		}
		findings = f
		return nil
	})
	g.Go(func() error {
		raw, err := s.compliance.AnalyzeImage(gctx, req.ImageData, req.MimeType)
		if err != nil {
			return &BackendError{Analyzer: s.compliance.SourceName(), Err: err}
		}
		rawAnalysis = raw
		return nil
	})

	if err := g.Wait(); err != nil {
		metrics.AnalysesTotal.WithLabelValues("backend_error").Inc()
		if be, ok := err.(*BackendError); ok {
			metrics.AnalyzerFailuresTotal.WithLabelValues(be.Analyzer).Inc()
		}
		return nil, err
	}

	analysis, err := parser.ParseAnalysis(rawAnalysis)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("parse_error").Inc()
		metrics.AnalyzerFailuresTotal.WithLabelValues(s.compliance.SourceName()).Inc()
		return nil, &BackendError{Analyzer: s.compliance.SourceName(), Err: err}
	}

	report := &models.Report{
		UserID:          req.UserID,
		ImageURL:        req.ImageURL,
		IsCompliant:     analysis.IsCompliant,
		Summary:         analysis.Summary,
		LocationDetails: analysis.LocationDetails,
		Violations:      mergeViolations(findings, analysis.Violations),
		Status:          models.StatusPending,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
	}

	if err := s.reports.SaveReport(ctx, report); err != nil {
		metrics.AnalysesTotal.WithLabelValues("save_error").Inc()
		return nil, err
	}

	metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	metrics.AnalysisDurationSeconds.Observe(time.Since(start).Seconds())
	log.Infof("Analyzed report %d for user %s: compliant=%t, violations=%d",
		report.ID, report.UserID, report.IsCompliant, len(report.Violations))

	if s.publisher != nil {
		if err := s.publisher.Publish(report); err != nil {
			log.Warnf("Failed to publish analyzed report %d: %v", report.ID, err)
		}
	}

	return report, nil
}

// mergeViolations normalizes both analyzer outputs into one structured
// violation list. Detector findings carry no type or severity, so each
// becomes an Other/Low record tagged with its origin; the untyped
// string form never leaks past this boundary. Summary, location and
// the compliance flag come from the compliance analyzer only.
func mergeViolations(findings []string, classified []parser.ViolationResult) []models.Violation {
	merged := make([]models.Violation, 0, len(findings)+len(classified))
	for _, f := range findings {
		merged = append(merged, models.Violation{
			ViolationType: models.ViolationOther,
			Severity:      models.SeverityLow,
			Details:       "Detector: " + f,
		})
	}
	for _, v := range classified {
		merged = append(merged, models.Violation{
			ViolationType: models.NormalizeViolationType(v.ViolationType),
			Severity:      models.NormalizeSeverity(v.Severity),
			Details:       v.Details,
		})
	}
	return merged
}
