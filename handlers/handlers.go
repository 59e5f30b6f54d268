package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"billboard-service/database"
	"billboard-service/heatmap"
	"billboard-service/models"
	"billboard-service/notify"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// Handlers handles HTTP requests for the billboard service.
type Handlers struct {
	auth     *database.AuthService
	reports  *database.ReportService
	analyzer Analyzer
	store    UploadStore
	notifier *notify.Notifier
}

// NewHandlers creates a new handlers instance.
func NewHandlers(auth *database.AuthService, reports *database.ReportService, analyzer Analyzer, store UploadStore, notifier *notify.Notifier) *Handlers {
	return &Handlers{
		auth:     auth,
		reports:  reports,
		analyzer: analyzer,
		store:    store,
		notifier: notifier,
	}
}

// Register handles user registration.
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	if _, err := h.auth.CreateUser(c.Request.Context(), req); err != nil {
		if errors.Is(err, database.ErrUserExists) {
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
			return
		}
		log.Errorf("Failed to register user: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "error registering user"})
		return
	}

	c.JSON(http.StatusCreated, models.MessageResponse{Message: "user registered successfully"})
}

// Login handles user authentication and issues the session token.
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrUserNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		case errors.Is(err, database.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		default:
			log.Errorf("Failed to log in user: %v", err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error"})
		}
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{Message: "Success", Token: token})
}

// ListMyBillboards returns all reports of the authenticated user.
func (h *Handlers) ListMyBillboards(c *gin.Context) {
	userID := c.GetString("user_id")

	reports, err := h.reports.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Errorf("Failed to list reports for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error fetching billboards"})
		return
	}

	c.JSON(http.StatusOK, reports)
}

// GetBillboard returns a single report owned by the authenticated user.
func (h *Handlers) GetBillboard(c *gin.Context) {
	userID := c.GetString("user_id")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid report id"})
		return
	}

	report, err := h.reports.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, database.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
			return
		}
		log.Errorf("Failed to get report %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error fetching billboard"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// UpdateBillboardStatus applies the Pending -> Reported transition and
// forwards the report to the municipality.
func (h *Handlers) UpdateBillboardStatus(c *gin.Context) {
	userID := c.GetString("user_id")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid report id"})
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	report, err := h.reports.UpdateStatus(c.Request.Context(), id, userID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrReportNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		case errors.Is(err, database.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		default:
			log.Errorf("Failed to update report %d status: %v", id, err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error updating status"})
		}
		return
	}

	// The forward is best-effort: the status change stands even if the
	// email fails.
	if h.notifier != nil {
		go func(r models.Report) {
			if err := h.notifier.SendReport(&r); err != nil {
				log.Warnf("Failed to forward report %d to municipality: %v", r.ID, err)
			}
		}(*report)
	}

	c.JSON(http.StatusOK, report)
}

// Heatmap returns the user's report locations aggregated into map cells.
func (h *Handlers) Heatmap(c *gin.Context) {
	userID := c.GetString("user_id")

	var vp heatmap.ViewPort
	if err := c.ShouldBindQuery(&vp); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	points, err := h.reports.ListLocations(c.Request.Context(), userID)
	if err != nil {
		log.Errorf("Failed to list report locations for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "server error fetching heatmap"})
		return
	}

	aggr := heatmap.NewAggregator(&vp)
	for _, p := range points {
		aggr.AddPoint(p[0], p[1])
	}

	c.JSON(http.StatusOK, aggr.ToCells())
}

// HealthCheck returns the service health status.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Server is healthy",
	})
}
