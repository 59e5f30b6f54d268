package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"billboard-service/models"
)

var (
	ErrReportNotFound    = errors.New("report not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ReportService handles all report-related database operations.
type ReportService struct {
	db *sql.DB
}

// NewReportService creates a new report service instance.
func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{db: db}
}

// SaveReport persists a report and its violations in one transaction.
// On success the report's ID and CreatedAt are filled in.
func (s *ReportService) SaveReport(ctx context.Context, report *models.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO reports (user_id, image_url, is_compliant, summary, location_details, status, latitude, longitude, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.UserID, report.ImageURL, report.IsCompliant, report.Summary,
		report.LocationDetails, string(models.StatusPending), report.Latitude, report.Longitude, now)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	reportID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get report id: %w", err)
	}

	for _, v := range report.Violations {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO violations (report_id, violation_type, severity, details) VALUES (?, ?, ?, ?)",
			reportID, string(v.ViolationType), string(v.Severity), v.Details); err != nil {
			return fmt.Errorf("failed to insert violation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	report.ID = reportID
	report.Status = models.StatusPending
	report.CreatedAt = now
	return nil
}

// ListByUser returns all reports owned by the given user, newest first.
func (s *ReportService) ListByUser(ctx context.Context, userID string) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, image_url, is_compliant, summary, location_details, status, latitude, longitude, created_at
		 FROM reports WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		var r models.Report
		if err := rows.Scan(&r.ID, &r.UserID, &r.ImageURL, &r.IsCompliant, &r.Summary,
			&r.LocationDetails, &r.Status, &r.Latitude, &r.Longitude, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	for i := range reports {
		violations, err := s.violationsForReport(ctx, reports[i].ID)
		if err != nil {
			return nil, err
		}
		reports[i].Violations = violations
	}
	return reports, nil
}

// GetByID returns one report owned by the given user.
func (s *ReportService) GetByID(ctx context.Context, id int64, userID string) (*models.Report, error) {
	var r models.Report
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, image_url, is_compliant, summary, location_details, status, latitude, longitude, created_at
		 FROM reports WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&r.ID, &r.UserID, &r.ImageURL, &r.IsCompliant, &r.Summary,
			&r.LocationDetails, &r.Status, &r.Latitude, &r.Longitude, &r.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	violations, err := s.violationsForReport(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	r.Violations = violations
	return &r, nil
}

// UpdateStatus applies the one-way Pending -> Reported transition and
// returns the updated report. Any other transition is rejected.
func (s *ReportService) UpdateStatus(ctx context.Context, id int64, userID string, status models.ReportStatus) (*models.Report, error) {
	if status != models.StatusReported {
		return nil, ErrInvalidTransition
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE reports SET status = ? WHERE id = ? AND user_id = ? AND status = ?",
		string(models.StatusReported), id, userID, string(models.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		// Either the report does not exist for this user or it has
		// already left Pending.
		if _, err := s.GetByID(ctx, id, userID); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	return s.GetByID(ctx, id, userID)
}

// ListLocations returns the coordinates of the user's reports for map
// aggregation. Reports without coordinates are skipped.
func (s *ReportService) ListLocations(ctx context.Context, userID string) ([][2]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT latitude, longitude FROM reports WHERE user_id = ? AND (latitude != 0 OR longitude != 0)", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query report locations: %w", err)
	}
	defer rows.Close()

	var points [][2]float64
	for rows.Next() {
		var lat, lon float64
		if err := rows.Scan(&lat, &lon); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		points = append(points, [2]float64{lat, lon})
	}
	return points, rows.Err()
}

func (s *ReportService) violationsForReport(ctx context.Context, reportID int64) ([]models.Violation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT violation_type, severity, details FROM violations WHERE report_id = ? ORDER BY id", reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query violations: %w", err)
	}
	defer rows.Close()

	violations := []models.Violation{}
	for rows.Next() {
		var v models.Violation
		if err := rows.Scan(&v.ViolationType, &v.Severity, &v.Details); err != nil {
			return nil, fmt.Errorf("failed to scan violation: %w", err)
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}
