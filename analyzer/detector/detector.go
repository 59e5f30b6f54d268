package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/apex/log"
)

// Client handles communication with the out-of-process object detector
// service. The detector receives the raw image as a multipart upload
// and returns a fixed-format list of detections without severity or
// type structure.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// detection is one detected object in the detector response.
type detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type detectResponse struct {
	Detections []detection `json:"detections"`
}

// NewClient creates a new detector client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) SourceName() string {
	return "Detector"
}

// Detect sends an image to the detector service and returns its
// findings as plain-text descriptions.
func (c *Client) Detect(ctx context.Context, imageData []byte, filename string) ([]string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	log.Infof("Sending image to detector service: %s, image size: %d bytes", c.baseURL, len(imageData))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to detector service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("detector service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode detector response: %w", err)
	}

	findings := make([]string, 0, len(response.Detections))
	for _, d := range response.Detections {
		findings = append(findings, fmt.Sprintf("Detected '%s' with %.2f confidence.", d.Label, d.Confidence))
	}

	log.Infof("Detector returned %d findings", len(findings))
	return findings, nil
}
