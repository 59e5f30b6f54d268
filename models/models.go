package models

import "time"

// ViolationType classifies a detected compliance issue.
type ViolationType string

const (
	ViolationPlacement     ViolationType = "Placement"
	ViolationContent       ViolationType = "Content"
	ViolationStructural    ViolationType = "Structural"
	ViolationSize          ViolationType = "Size"
	ViolationAuthorization ViolationType = "Authorization"
	ViolationOther         ViolationType = "Other"
)

// Severity is the impact tier of a violation.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// ReportStatus is the lifecycle state of a report. The only legal
// transition is Pending -> Reported.
type ReportStatus string

const (
	StatusPending  ReportStatus = "Pending"
	StatusReported ReportStatus = "Reported"
)

// violationTypeAliases maps analyzer rule-category names to the closed
// violation type set. The generative analyzer is prompted with rule
// names like "Structural Integrity" and "Size & Shape".
var violationTypeAliases = map[string]ViolationType{
	"Placement":            ViolationPlacement,
	"Content":              ViolationContent,
	"Structural":           ViolationStructural,
	"Structural Integrity": ViolationStructural,
	"Size":                 ViolationSize,
	"Size & Shape":         ViolationSize,
	"Authorization":        ViolationAuthorization,
	"Other":                ViolationOther,
}

// NormalizeViolationType clamps an analyzer-provided type string to the
// closed enum. Unknown values fall back to Other instead of failing the
// whole analysis on a cosmetic mismatch.
func NormalizeViolationType(s string) ViolationType {
	if vt, ok := violationTypeAliases[s]; ok {
		return vt
	}
	return ViolationOther
}

// NormalizeSeverity clamps an analyzer-provided severity string to the
// closed enum, falling back to Low.
func NormalizeSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return Severity(s)
	}
	return SeverityLow
}

// User represents an authenticated citizen, derived from the session
// credential on the client or from the users table on the server.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Violation is one detected compliance issue. Immutable once created,
// owned exclusively by its parent report.
type Violation struct {
	ViolationType ViolationType `json:"violation_type"`
	Severity      Severity      `json:"severity"`
	Details       string        `json:"details"`
}

// Report is the persisted outcome of one billboard compliance analysis.
type Report struct {
	ID              int64        `json:"id"`
	UserID          string       `json:"user_id"`
	ImageURL        string       `json:"image_url"`
	IsCompliant     bool         `json:"is_compliant"`
	Summary         string       `json:"summary"`
	LocationDetails string       `json:"location_details"`
	Violations      []Violation  `json:"violations"`
	Status          ReportStatus `json:"status"`
	Latitude        float64      `json:"latitude"`
	Longitude       float64      `json:"longitude"`
	CreatedAt       time.Time    `json:"created_at"`
}

// RegisterRequest is the user registration payload.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=256"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the authentication payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries the signed session credential back to the client.
type TokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// UpdateStatusRequest asks for a report status transition. Only
// "Reported" is accepted; the reverse transition does not exist.
type UpdateStatusRequest struct {
	Status ReportStatus `json:"status" binding:"required,oneof=Reported"`
}

// MessageResponse is a simple message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is a structured error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HeatmapCell is one aggregated map cell of report locations.
type HeatmapCell struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int64   `json:"count"`
}
