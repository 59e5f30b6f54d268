package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"billboard-service/models"

	"github.com/apex/log"
)

// ListMine fetches all reports of the current session. Transport
// failures degrade to an empty list: the caller sees "no data" rather
// than an error.
func (c *Client) ListMine(ctx context.Context) []models.Report {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/my-billboards", nil)
	if err != nil {
		log.Warnf("Failed to create list request: %v", err)
		return []models.Report{}
	}

	var reports []models.Report
	if err := c.do(req, &reports); err != nil {
		log.Warnf("Failed to fetch reports: %v", err)
		return []models.Report{}
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return reports
}

// GetByID fetches a single report, or nil when it is missing or the
// request fails.
func (c *Client) GetByID(ctx context.Context, id int64) *models.Report {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/my-billboards/%d", c.baseURL, id), nil)
	if err != nil {
		log.Warnf("Failed to create get request: %v", err)
		return nil
	}

	var report models.Report
	if err := c.do(req, &report); err != nil {
		log.Warnf("Failed to fetch report %d: %v", id, err)
		return nil
	}
	return &report
}

// UpdateStatus applies a status transition server-side and returns the
// updated report. Write failures are surfaced to the caller.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status models.ReportStatus) (*models.Report, error) {
	body, err := json.Marshal(models.UpdateStatusRequest{Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		fmt.Sprintf("%s/my-billboards/%d", c.baseURL, id), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var report models.Report
	if err := c.do(req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// AnalyzeHybrid uploads one image for hybrid analysis and returns the
// created report.
func (c *Client) AnalyzeHybrid(ctx context.Context, filename string, image io.Reader, lat, lon float64) (*models.Report, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("billboardImage", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to copy image data: %w", err)
	}
	if lat != 0 || lon != 0 {
		writer.WriteField("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
		writer.WriteField("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze-hybrid", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var report models.Report
	if err := c.do(req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
