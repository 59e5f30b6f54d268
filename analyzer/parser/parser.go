package parser

import (
	"encoding/json"
	"errors"
	"strings"
)

// ViolationResult is one violation as reported by the compliance
// analyzer, before enum normalization.
type ViolationResult struct {
	ViolationType string `json:"violation_type"`
	Severity      string `json:"severity"`
	Details       string `json:"details"`
}

// AnalysisResult represents the parsed compliance analysis.
type AnalysisResult struct {
	IsCompliant     bool              `json:"is_compliant"`
	Summary         string            `json:"summary"`
	LocationDetails string            `json:"location_details"`
	Violations      []ViolationResult `json:"violations"`
}

// extractJSONFromMarkdown extracts JSON from markdown code blocks.
func extractJSONFromMarkdown(response string) string {
	startMarker := "```"
	endMarker := "```"

	startIdx := strings.Index(response, startMarker)
	if startIdx == -1 {
		// No code block found, try to find a JSON object directly
		startIdx = strings.Index(response, "{")
		if startIdx == -1 {
			return response
		}
		endIdx := strings.LastIndex(response, "}")
		if endIdx == -1 {
			return response
		}
		return strings.TrimSpace(response[startIdx : endIdx+1])
	}

	endIdx := strings.Index(response[startIdx+len(startMarker):], endMarker)
	if endIdx == -1 {
		return response
	}
	endIdx += startIdx + len(startMarker)

	content := response[startIdx+len(startMarker) : endIdx]

	// Remove the language identifier if present (e.g., "json")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && (strings.TrimSpace(lines[0]) == "json" || strings.TrimSpace(lines[0]) == "") {
		content = strings.Join(lines[1:], "\n")
	}

	return strings.TrimSpace(content)
}

// ParseAnalysis parses the analyzer response and extracts the
// compliance fields. Missing free-text fields get fallback values;
// malformed JSON is an error.
func ParseAnalysis(response string) (*AnalysisResult, error) {
	cleaned := strings.TrimSpace(response)
	jsonContent := extractJSONFromMarkdown(cleaned)

	var result AnalysisResult
	if err := json.Unmarshal([]byte(jsonContent), &result); err != nil {
		return nil, errors.New("failed to parse JSON response: " + err.Error())
	}

	if result.Summary == "" {
		result.Summary = "No summary provided."
	}
	if result.LocationDetails == "" {
		result.LocationDetails = "No location detected."
	}
	if result.Violations == nil {
		result.Violations = []ViolationResult{}
	}

	return &result, nil
}
