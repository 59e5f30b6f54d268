package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"billboard-service/analyzer"
	"billboard-service/models"
	"billboard-service/storage"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// Analyzer runs one hybrid analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) (*models.Report, error)
}

// UploadStore persists uploaded images.
type UploadStore interface {
	Save(originalName string, data []byte) (*storage.Upload, error)
}

// AnalyzeHybrid accepts one multipart image upload, runs both analyzers
// concurrently and returns the persisted report.
func (h *Handlers) AnalyzeHybrid(c *gin.Context) {
	userID := c.GetString("user_id")

	file, err := formImage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no image file uploaded"})
		return
	}

	src, err := file.Open()
	if err != nil {
		log.Errorf("Failed to open upload: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to read upload"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Errorf("Failed to read upload: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to read upload"})
		return
	}

	upload, err := h.store.Save(file.Filename, data)
	if err != nil {
		if errors.Is(err, storage.ErrUnknownImageType) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		log.Errorf("Failed to store upload: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to store upload"})
		return
	}

	lat := formFloat(c, "latitude")
	lon := formFloat(c, "longitude")

	report, err := h.analyzer.Analyze(c.Request.Context(), analyzer.Request{
		UserID:    userID,
		ImageData: data,
		MimeType:  upload.MimeType,
		Filename:  upload.Filename,
		ImageURL:  upload.URL,
		Latitude:  lat,
		Longitude: lon,
	})
	if err != nil {
		var be *analyzer.BackendError
		if errors.As(err, &be) {
			log.Errorf("Hybrid analysis failed (%s): %v", be.Analyzer, be.Err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "hybrid AI analysis failed"})
			return
		}
		log.Errorf("Failed to persist analysis: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to save the report"})
		return
	}

	c.JSON(http.StatusCreated, report)
}

// formImage finds the uploaded image under either accepted field name.
func formImage(c *gin.Context) (*multipart.FileHeader, error) {
	if file, err := c.FormFile("billboardImage"); err == nil {
		return file, nil
	}
	return c.FormFile("file")
}

func formFloat(c *gin.Context, field string) float64 {
	v, err := strconv.ParseFloat(c.PostForm(field), 64)
	if err != nil {
		return 0
	}
	return v
}
