package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const promptSystem = `
You are an AI assistant acting as a billboard compliance inspector for Indian cities,
analyzing images based on a simplified version of the 'Model Outdoor Advertising Policy'.

Your task is to analyze the provided image of a billboard, identify its location from
visual cues, and determine if it complies with the following rules. Respond ONLY with
a single valid JSON object matching the schema below — no wrapping markdown.

Compliance Rules:

1. Placement:
   - Violation (High Severity): the billboard obstructs traffic signals, road signs,
     or is placed directly at a road intersection or on a sharp curve.
   - Violation (Medium Severity): the billboard is on a bridge or overpass.

2. Size & Shape:
   - Violation (Low Severity): the billboard's aspect ratio appears disproportionately
     large, wider than a 3:1 (width:height) ratio.

3. Structural Integrity:
   - Violation (High Severity): visible signs of significant rust, decay, bending, or
     an unstable or poorly maintained structure.
   - Violation (Medium Severity): minor wear and tear, like peeling paint or small
     damaged sections.

4. Content:
   - Violation (High Severity): obscene, derogatory, violent, or political/religious
     content.
   - Violation (Medium Severity): overly flashy content, rapidly changing lights, or
     content designed to distract drivers excessively.

5. Authorization:
   - Violation (Low Severity): a designated area for a license number or QR code is
     present but empty, or the billboard is large and clearly commercial without any
     visible identifier. Do not flag small, simple, or local non-commercial billboards.

Analysis Process:
- First describe the location based on any visible street signs, landmarks, or other
  contextual clues in the image.
- Identify all applicable violations from the list above.
- If no violations are found, return is_compliant: true and an empty violations array.
- Otherwise return is_compliant: false and populate the violations array accordingly.
- Provide a concise summary of your findings.

JSON Schema:
{
  "is_compliant": boolean,
  "summary": "string",
  "location_details": "string",
  "violations": [
    {
      "violation_type": "string (e.g., Placement, Structural Integrity)",
      "severity": "string (High, Medium, or Low)",
      "details": "string (A clear explanation of the violation)"
    }
  ]
}
`

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"response_mime_type,omitempty"`
}

type geminiRequest struct {
	GenerationConfig generationConfig `json:"generationConfig,omitempty"`
	Contents         []content        `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client calls the Gemini generateContent API for billboard compliance
// analysis.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Gemini client.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com",
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint,
// used in tests.
func NewClientWithBaseURL(apiKey, model, baseURL string) *Client {
	c := NewClient(apiKey, model)
	c.baseURL = baseURL
	return c
}

func (c *Client) SourceName() string {
	return "Gemini"
}

// AnalyzeImage runs the compliance rule prompt against the image and
// returns the raw model output text.
func (c *Client) AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	reqBody := geminiRequest{
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{Text: promptSystem},
					{InlineData: &inlineData{
						MimeType: mimeType,
						Data:     base64.StdEncoding.EncodeToString(imageData),
					}},
				},
			},
		},
	}

	return c.generateContent(ctx, reqBody)
}

func (c *Client) generateContent(ctx context.Context, body geminiRequest) (string, error) {
	// try v1beta first, then v1
	endpoints := []string{
		fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey),
		fmt.Sprintf("%s/v1/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for _, ep := range endpoints {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep, bytes.NewBuffer(data))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to send request: %w", err)
			continue
		}
		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
			continue
		}
		var gr geminiResponse
		if err := json.Unmarshal(bodyBytes, &gr); err != nil {
			lastErr = fmt.Errorf("failed to parse response: %w", err)
			continue
		}
		if len(gr.Candidates) == 0 {
			lastErr = fmt.Errorf("no candidates in response")
			continue
		}
		for _, p := range gr.Candidates[0].Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
		lastErr = fmt.Errorf("no text part in response")
	}
	return "", lastErr
}
