package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/pr-reviewer/internal/domain"
)

func fixedClock() string { return "2024-06-01 12:00:00" }

func fullResult() domain.ReviewResult {
	return domain.NewReviewResult(domain.ReviewResultInput{
		SecurityScore: 45,
		QualityScore:  85,
		Approval:      domain.ApprovalRequestChanges,
		Summary:       "Found a serious injection problem.",
		Vulnerabilities: []domain.Vulnerability{
			{
				Type:           "sql_injection",
				Severity:       domain.SeverityCritical,
				File:           "db/query.go",
				Line:           "42",
				Description:    "User input concatenated into SQL.",
				Recommendation: "Use parameterized queries.",
			},
		},
		Issues: []domain.CodeIssue{
			{
				Type:        "long_function",
				Severity:    domain.SeverityLow,
				File:        "handler.go",
				Line:        "10",
				Description: "Function exceeds 100 lines.",
				Recommendation: "Split into smaller helpers.",
			},
		},
		Recommendations: []string{"Add integration tests.", "Enable linting in CI."},
		AIConfidence:    0.85,
	})
}

func TestRenderFullReport(t *testing.T) {
	r := NewRenderer(fixedClock)
	pr := domain.PullRequest{Number: 42, Title: "Add search endpoint"}

	report := r.Render(fullResult(), pr)

	assert.True(t, strings.HasPrefix(report, "# 🤖 AI Code Review Report\n"))
	assert.Contains(t, report, "**PR:** Add search endpoint (#42)")
	assert.Contains(t, report, "**Generated:** 2024-06-01 12:00:00 UTC")
	assert.Contains(t, report, "**AI Confidence:** 85.0%")
	assert.Contains(t, report, "| Security | 45/100 | 🔴 Poor |")
	assert.Contains(t, report, "| Quality | 85/100 | 🟡 Good |")
	assert.Contains(t, report, "## 🎯 Recommendation: **REQUEST_CHANGES**")
	assert.Contains(t, report, "Found a serious injection problem.")
	assert.Contains(t, report, "## 🚨 Security Vulnerabilities (1)")
	assert.Contains(t, report, "### 🚨 1. Sql Injection")
	assert.Contains(t, report, "**File:** `db/query.go`")
	assert.Contains(t, report, "**Severity:** CRITICAL")
	assert.Contains(t, report, "Use parameterized queries.")
	assert.Contains(t, report, "## ⚠️ Code Quality Issues (1)")
	assert.Contains(t, report, "### 🟢 1. Long Function")
	assert.Contains(t, report, "Split into smaller helpers.")
	assert.Contains(t, report, "## 💡 Recommendations")
	assert.Contains(t, report, "1. Add integration tests.")
	assert.Contains(t, report, "2. Enable linting in CI.")
	assert.True(t, strings.HasSuffix(report, "*Generated by AI Code Reviewer v1.0*"))
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer(fixedClock)
	pr := domain.PullRequest{Number: 7, Title: "Refactor"}

	first := r.Render(fullResult(), pr)
	second := r.Render(fullResult(), pr)

	assert.Equal(t, first, second)
}

func TestRenderOmitsEmptySections(t *testing.T) {
	r := NewRenderer(fixedClock)
	result := domain.NewReviewResult(domain.ReviewResultInput{
		SecurityScore: 95,
		QualityScore:  92,
		Approval:      domain.ApprovalApprove,
	})

	report := r.Render(result, domain.PullRequest{Number: 1, Title: "Tidy"})

	assert.NotContains(t, report, "## 📝 Summary")
	assert.NotContains(t, report, "Security Vulnerabilities")
	assert.NotContains(t, report, "Code Quality Issues")
	assert.NotContains(t, report, "## 💡 Recommendations")
	assert.Contains(t, report, "| Security | 95/100 | 🟢 Excellent |")
	assert.Contains(t, report, "*Generated by AI Code Reviewer v1.0*")
}

func TestRenderMissingMetadata(t *testing.T) {
	r := NewRenderer(fixedClock)
	result := domain.NewReviewResult(domain.ReviewResultInput{
		SecurityScore: 70,
		QualityScore:  70,
		Vulnerabilities: []domain.Vulnerability{
			{Severity: domain.SeverityHigh},
		},
	})

	report := r.Render(result, domain.PullRequest{})

	assert.Contains(t, report, "**PR:** N/A (#N/A)")
	assert.Contains(t, report, "### 🔴 1. Unknown")
	assert.Contains(t, report, "**File:** `N/A`")
	assert.Contains(t, report, "**Description:** "+domain.NoDescriptionProvided)
	assert.Contains(t, report, "**Recommendation:** "+domain.NoRecommendation)
}

func TestRenderUnknownSeverityMarker(t *testing.T) {
	r := NewRenderer(fixedClock)
	result := domain.NewReviewResult(domain.ReviewResultInput{
		SecurityScore: 60,
		QualityScore:  60,
		Issues: []domain.CodeIssue{
			{Type: "style", Severity: "BLOCKER", Description: "Odd formatting."},
		},
	})

	report := r.Render(result, domain.PullRequest{Number: 3, Title: "Style pass"})

	assert.Contains(t, report, "### ⚠️ 1. Style")
	assert.Contains(t, report, "**Severity:** BLOCKER")
}

func TestScoreStatusTiers(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "🟢 Excellent"},
		{90, "🟢 Excellent"},
		{89, "🟡 Good"},
		{70, "🟡 Good"},
		{69, "🟠 Fair"},
		{50, "🟠 Fair"},
		{49, "🔴 Poor"},
		{0, "🔴 Poor"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, scoreStatus(tt.score), "score %d", tt.score)
	}
}

func TestRenderNeverEmpty(t *testing.T) {
	r := NewRenderer(fixedClock)

	report := r.Render(domain.ReviewResult{}, domain.PullRequest{})

	require.NotEmpty(t, report)
	assert.Contains(t, report, "# 🤖 AI Code Review Report")
}
