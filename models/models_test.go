package models

import "testing"

func TestNormalizeViolationType(t *testing.T) {
	testCases := []struct {
		in       string
		expected ViolationType
	}{
		{in: "Placement", expected: ViolationPlacement},
		{in: "Content", expected: ViolationContent},
		{in: "Structural", expected: ViolationStructural},
		{in: "Structural Integrity", expected: ViolationStructural},
		{in: "Size", expected: ViolationSize},
		{in: "Size & Shape", expected: ViolationSize},
		{in: "Authorization", expected: ViolationAuthorization},
		{in: "Other", expected: ViolationOther},
		{in: "Aesthetics", expected: ViolationOther},
		{in: "structural", expected: ViolationOther},
		{in: "", expected: ViolationOther},
	}
	for _, testCase := range testCases {
		if got := NormalizeViolationType(testCase.in); got != testCase.expected {
			t.Errorf("NormalizeViolationType(%q) = %s, want %s", testCase.in, got, testCase.expected)
		}
	}
}

func TestNormalizeSeverity(t *testing.T) {
	testCases := []struct {
		in       string
		expected Severity
	}{
		{in: "High", expected: SeverityHigh},
		{in: "Medium", expected: SeverityMedium},
		{in: "Low", expected: SeverityLow},
		{in: "Critical", expected: SeverityLow},
		{in: "high", expected: SeverityLow},
		{in: "", expected: SeverityLow},
	}
	for _, testCase := range testCases {
		if got := NormalizeSeverity(testCase.in); got != testCase.expected {
			t.Errorf("NormalizeSeverity(%q) = %s, want %s", testCase.in, got, testCase.expected)
		}
	}
}
