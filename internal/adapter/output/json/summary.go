// Package json builds the JSON response payloads returned by the review
// endpoints.
package json

import (
	"github.com/bkyoung/pr-reviewer/internal/domain"
)

type clock func() string

// SummaryBuilder assembles response payloads. Timestamps come from the
// injected supplier so responses are deterministic under test.
type SummaryBuilder struct {
	now clock
}

// NewSummaryBuilder constructs a builder with a timestamp supplier. The
// supplier should return RFC 3339 formatted UTC times.
func NewSummaryBuilder(now clock) *SummaryBuilder {
	return &SummaryBuilder{now: now}
}

// ReviewSummary is the compact review block embedded in webhook responses.
type ReviewSummary struct {
	SecurityScore        int     `json:"security_score"`
	QualityScore         int     `json:"quality_score"`
	Approval             string  `json:"approval"`
	Confidence           float64 `json:"confidence"`
	VulnerabilitiesCount int     `json:"vulnerabilities_count"`
	IssuesCount          int     `json:"issues_count"`
}

// WebhookResponse is the body returned after a webhook-triggered review.
type WebhookResponse struct {
	Success        bool          `json:"success"`
	PRNumber       int           `json:"pr_number"`
	Repository     string        `json:"repository"`
	Review         ReviewSummary `json:"review"`
	MarkdownReport string        `json:"markdown_report"`
	Timestamp      string        `json:"timestamp"`
}

// ReviewDetail is the full review block embedded in direct review responses.
type ReviewDetail struct {
	SecurityScore   int                    `json:"security_score"`
	QualityScore    int                    `json:"quality_score"`
	Approval        string                 `json:"approval"`
	Confidence      float64                `json:"confidence"`
	Summary         string                 `json:"summary"`
	Vulnerabilities []domain.Vulnerability `json:"vulnerabilities"`
	Issues          []domain.CodeIssue     `json:"issues"`
	Recommendations []string               `json:"recommendations"`
}

// ReviewResponse is the body returned by the direct review endpoint.
type ReviewResponse struct {
	Success        bool         `json:"success"`
	Review         ReviewDetail `json:"review"`
	MarkdownReport string       `json:"markdown_report"`
	Timestamp      string       `json:"timestamp"`
}

// BuildWebhookResponse summarizes a webhook-triggered review.
func (b *SummaryBuilder) BuildWebhookResponse(result domain.ReviewResult, pr domain.PullRequest, report string) WebhookResponse {
	return WebhookResponse{
		Success:    true,
		PRNumber:   pr.Number,
		Repository: pr.Repository,
		Review: ReviewSummary{
			SecurityScore:        result.SecurityScore,
			QualityScore:         result.QualityScore,
			Approval:             result.Approval,
			Confidence:           result.AIConfidence,
			VulnerabilitiesCount: len(result.Vulnerabilities),
			IssuesCount:          len(result.Issues),
		},
		MarkdownReport: report,
		Timestamp:      b.now(),
	}
}

// BuildReviewResponse carries the full result for a direct review.
func (b *SummaryBuilder) BuildReviewResponse(result domain.ReviewResult, report string) ReviewResponse {
	return ReviewResponse{
		Success: true,
		Review: ReviewDetail{
			SecurityScore:   result.SecurityScore,
			QualityScore:    result.QualityScore,
			Approval:        result.Approval,
			Confidence:      result.AIConfidence,
			Summary:         result.Summary,
			Vulnerabilities: result.Vulnerabilities,
			Issues:          result.Issues,
			Recommendations: result.Recommendations,
		},
		MarkdownReport: report,
		Timestamp:      b.now(),
	}
}
