package domain

import (
	"strconv"
	"strings"
)

// ReviewResultFromPayload builds a ReviewResult from the loose key/value
// payload returned by the AI collaborator. The AI is an untrusted,
// non-deterministic producer: numbers may arrive as floats, ints, or
// strings, findings may be maps with missing keys, and recommendations may
// be a bare string. Every field is extracted defensively with a documented
// default so construction never fails on malformed input. This is the only
// place loose payloads become typed results.
func ReviewResultFromPayload(payload map[string]any) ReviewResult {
	if payload == nil {
		payload = map[string]any{}
	}

	return NewReviewResult(ReviewResultInput{
		SecurityScore:      intField(payload, "security_score", 0),
		QualityScore:       intField(payload, "quality_score", 0),
		Vulnerabilities:    vulnerabilitiesField(payload, "vulnerabilities"),
		Issues:             issuesField(payload, "issues"),
		Summary:            stringField(payload, "summary", ""),
		Recommendations:    stringListField(payload, "recommendations"),
		Approval:           strings.ToUpper(strings.TrimSpace(stringField(payload, "approval", ""))),
		AIConfidence:       floatField(payload, "ai_confidence", 0.0),
		ComplexityAnalysis: complexityField(payload, "complexity_analysis"),
	})
}

func vulnerabilitiesField(payload map[string]any, key string) []Vulnerability {
	items := listField(payload, key)
	vulnerabilities := make([]Vulnerability, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		vulnerabilities = append(vulnerabilities, Vulnerability{
			Type:           stringField(entry, "type", UnknownType),
			Severity:       severityField(entry, "severity"),
			File:           stringField(entry, "file", ""),
			Line:           lineField(entry, "line"),
			Description:    stringField(entry, "description", NoDescriptionProvided),
			Recommendation: stringField(entry, "recommendation", NoRecommendation),
			Matches:        stringListField(entry, "matches"),
		})
	}
	return vulnerabilities
}

func issuesField(payload map[string]any, key string) []CodeIssue {
	items := listField(payload, key)
	issues := make([]CodeIssue, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		issues = append(issues, CodeIssue{
			Type:           stringField(entry, "type", UnknownType),
			Severity:       severityField(entry, "severity"),
			File:           stringField(entry, "file", ""),
			Line:           lineField(entry, "line"),
			Description:    stringField(entry, "description", NoDescriptionProvided),
			Recommendation: stringField(entry, "recommendation", NoRecommendation),
		})
	}
	return issues
}

func complexityField(payload map[string]any, key string) *ComplexityAnalysis {
	entry, ok := payload[key].(map[string]any)
	if !ok || len(entry) == 0 {
		return nil
	}
	return &ComplexityAnalysis{
		CognitiveComplexity:   strings.ToUpper(stringField(entry, "cognitive_complexity", SeverityMedium)),
		MaintainabilityImpact: strings.ToUpper(stringField(entry, "maintainability_impact", "NEUTRAL")),
		TestingAdequacy:       strings.ToUpper(stringField(entry, "testing_adequacy", "NEEDS_IMPROVEMENT")),
	}
}

// severityField upper-cases the reported severity and defaults to MEDIUM
// when missing. Unrecognized tags are preserved; the renderer falls back to
// a generic marker for them.
func severityField(entry map[string]any, key string) string {
	severity := strings.ToUpper(strings.TrimSpace(stringField(entry, key, "")))
	if severity == "" {
		return SeverityMedium
	}
	return severity
}

// lineField accepts both string and numeric line locators.
func lineField(entry map[string]any, key string) string {
	switch value := entry[key].(type) {
	case string:
		return value
	case float64:
		return strconv.Itoa(int(value))
	case int:
		return strconv.Itoa(value)
	default:
		return ""
	}
}

func stringField(payload map[string]any, key, fallback string) string {
	if value, ok := payload[key].(string); ok && value != "" {
		return value
	}
	return fallback
}

func intField(payload map[string]any, key string, fallback int) int {
	switch value := payload[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return int(parsed)
		}
	}
	return fallback
}

func floatField(payload map[string]any, key string, fallback float64) float64 {
	switch value := payload[key].(type) {
	case float64:
		return value
	case int:
		return float64(value)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func listField(payload map[string]any, key string) []any {
	if items, ok := payload[key].([]any); ok {
		return items
	}
	return nil
}

// stringListField coerces a bare string value to a single-item list and
// stringifies any non-string list members.
func stringListField(payload map[string]any, key string) []string {
	switch value := payload[key].(type) {
	case []any:
		result := make([]string, 0, len(value))
		for _, item := range value {
			if text, ok := item.(string); ok {
				result = append(result, text)
			}
		}
		return result
	case []string:
		return value
	case string:
		if value == "" {
			return []string{}
		}
		return []string{value}
	default:
		return []string{}
	}
}
