package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"

	"billboard-service/models"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func reportColumns() []string {
	return []string{"id", "user_id", "image_url", "is_compliant", "summary",
		"location_details", "status", "latitude", "longitude", "created_at"}
}

func violationColumns() []string {
	return []string{"violation_type", "severity", "details"}
}

func TestSaveReport(t *testing.T) {
	it(func() {
		report := &models.Report{
			UserID:          "user_1",
			ImageURL:        "http://localhost:3001/uploads/billboard-abc.jpg",
			IsCompliant:     false,
			Summary:         "Rusted support structure.",
			LocationDetails: "Main St near the bridge.",
			Latitude:        42.44,
			Longitude:       19.26,
			Violations: []models.Violation{
				{ViolationType: models.ViolationStructural, Severity: models.SeverityHigh, Details: "Visible rust on the frame."},
			},
		}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO reports").
			WithArgs(report.UserID, report.ImageURL, report.IsCompliant, report.Summary,
				report.LocationDetails, "Pending", report.Latitude, report.Longitude, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(7, 1))
		mock.ExpectExec("INSERT INTO violations").
			WithArgs(int64(7), "Structural", "High", "Visible rust on the frame.").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		service := NewReportService(db)
		if err := service.SaveReport(context.Background(), report); err != nil {
			t.Fatalf("SaveReport: unexpected error: %v", err)
		}
		if report.ID != 7 {
			t.Errorf("SaveReport: expected id 7, got %d", report.ID)
		}
		if report.Status != models.StatusPending {
			t.Errorf("SaveReport: expected status Pending, got %s", report.Status)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("SaveReport: unmet expectations: %v", err)
		}
	})
}

func TestSaveReportRollsBackOnViolationError(t *testing.T) {
	it(func() {
		report := &models.Report{
			UserID: "user_1",
			Violations: []models.Violation{
				{ViolationType: models.ViolationSize, Severity: models.SeverityMedium, Details: "Oversized panel."},
			},
		}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO reports").
			WillReturnResult(sqlmock.NewResult(3, 1))
		mock.ExpectExec("INSERT INTO violations").
			WillReturnError(errors.New("constraint violation"))
		mock.ExpectRollback()

		service := NewReportService(db)
		if err := service.SaveReport(context.Background(), report); err == nil {
			t.Error("SaveReport: expected error, got nil")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("SaveReport: unmet expectations: %v", err)
		}
	})
}

func TestListByUser(t *testing.T) {
	it(func() {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM reports WHERE user_id = (.+) ORDER BY created_at DESC").
			WithArgs("user_1").
			WillReturnRows(sqlmock.NewRows(reportColumns()).
				AddRow(2, "user_1", "http://x/uploads/b.jpg", true, "Compliant.", "Downtown.", "Pending", 42.0, 19.0, now).
				AddRow(1, "user_1", "http://x/uploads/a.jpg", false, "Not compliant.", "Suburbs.", "Reported", 42.1, 19.1, now.Add(-time.Hour)))
		mock.ExpectQuery("SELECT violation_type, severity, details FROM violations").
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows(violationColumns()))
		mock.ExpectQuery("SELECT violation_type, severity, details FROM violations").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(violationColumns()).
				AddRow("Placement", "Low", "Too close to the intersection."))

		service := NewReportService(db)
		reports, err := service.ListByUser(context.Background(), "user_1")
		if err != nil {
			t.Fatalf("ListByUser: unexpected error: %v", err)
		}
		if len(reports) != 2 {
			t.Fatalf("ListByUser: expected 2 reports, got %d", len(reports))
		}
		if reports[0].ID != 2 {
			t.Errorf("ListByUser: expected newest report first, got id %d", reports[0].ID)
		}
		if len(reports[1].Violations) != 1 || reports[1].Violations[0].ViolationType != models.ViolationPlacement {
			t.Errorf("ListByUser: expected one Placement violation on report 1, got %+v", reports[1].Violations)
		}
	})
}

func TestGetByIDNotFound(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = (.+) AND user_id = (.+)").
			WithArgs(int64(99), "user_1").
			WillReturnError(sql.ErrNoRows)

		service := NewReportService(db)
		if _, err := service.GetByID(context.Background(), 99, "user_1"); !errors.Is(err, ErrReportNotFound) {
			t.Errorf("GetByID: expected ErrReportNotFound, got %v", err)
		}
	})
}

func TestUpdateStatus(t *testing.T) {
	it(func() {
		now := time.Now()
		mock.ExpectExec("UPDATE reports SET status = (.+) WHERE id = (.+) AND user_id = (.+) AND status = (.+)").
			WithArgs("Reported", int64(5), "user_1", "Pending").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = (.+) AND user_id = (.+)").
			WithArgs(int64(5), "user_1").
			WillReturnRows(sqlmock.NewRows(reportColumns()).
				AddRow(5, "user_1", "http://x/uploads/c.jpg", false, "S.", "L.", "Reported", 0.0, 0.0, now))
		mock.ExpectQuery("SELECT violation_type, severity, details FROM violations").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(violationColumns()))

		service := NewReportService(db)
		report, err := service.UpdateStatus(context.Background(), 5, "user_1", models.StatusReported)
		if err != nil {
			t.Fatalf("UpdateStatus: unexpected error: %v", err)
		}
		if report.Status != models.StatusReported {
			t.Errorf("UpdateStatus: expected Reported, got %s", report.Status)
		}
	})
}

func TestUpdateStatusRejectsReverseTransition(t *testing.T) {
	it(func() {
		service := NewReportService(db)
		if _, err := service.UpdateStatus(context.Background(), 5, "user_1", models.StatusPending); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("UpdateStatus: expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestUpdateStatusAlreadyReported(t *testing.T) {
	it(func() {
		now := time.Now()
		mock.ExpectExec("UPDATE reports SET status = (.+)").
			WithArgs("Reported", int64(5), "user_1", "Pending").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = (.+) AND user_id = (.+)").
			WithArgs(int64(5), "user_1").
			WillReturnRows(sqlmock.NewRows(reportColumns()).
				AddRow(5, "user_1", "http://x/uploads/c.jpg", false, "S.", "L.", "Reported", 0.0, 0.0, now))
		mock.ExpectQuery("SELECT violation_type, severity, details FROM violations").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(violationColumns()))

		service := NewReportService(db)
		if _, err := service.UpdateStatus(context.Background(), 5, "user_1", models.StatusReported); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("UpdateStatus: expected ErrInvalidTransition for already reported, got %v", err)
		}
	})
}

func TestUpdateStatusMissingReport(t *testing.T) {
	it(func() {
		mock.ExpectExec("UPDATE reports SET status = (.+)").
			WithArgs("Reported", int64(404), "user_1", "Pending").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = (.+) AND user_id = (.+)").
			WithArgs(int64(404), "user_1").
			WillReturnError(sql.ErrNoRows)

		service := NewReportService(db)
		if _, err := service.UpdateStatus(context.Background(), 404, "user_1", models.StatusReported); !errors.Is(err, ErrReportNotFound) {
			t.Errorf("UpdateStatus: expected ErrReportNotFound, got %v", err)
		}
	})
}
