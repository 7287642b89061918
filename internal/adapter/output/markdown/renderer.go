// Package markdown renders review results into Markdown reports.
package markdown

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bkyoung/pr-reviewer/internal/domain"
)

type clock func() string

// Renderer builds Markdown review reports. Output is deterministic for a
// fixed timestamp supplier.
type Renderer struct {
	now   clock
	caser cases.Caser
}

// NewRenderer constructs a renderer with a timestamp supplier. The supplier
// should return "2006-01-02 15:04:05" formatted UTC times.
func NewRenderer(now clock) *Renderer {
	return &Renderer{
		now:   now,
		caser: cases.Title(language.English),
	}
}

// Render produces the full Markdown report for a review. Rendering never
// panics outward: an unexpected failure yields a minimal error document
// instead of taking the caller down.
func (r *Renderer) Render(result domain.ReviewResult, pr domain.PullRequest) (report string) {
	defer func() {
		if rec := recover(); rec != nil {
			report = fmt.Sprintf("# 🤖 AI Code Review Report\n\nReport generation failed: %v\n", rec)
		}
	}()

	var b strings.Builder

	b.WriteString("# 🤖 AI Code Review Report\n\n")
	fmt.Fprintf(&b, "**PR:** %s (#%s)\n", orNA(pr.Title), prNumber(pr))
	fmt.Fprintf(&b, "**Generated:** %s UTC\n", r.now())
	fmt.Fprintf(&b, "**AI Confidence:** %.1f%%\n\n", result.AIConfidence*100)

	b.WriteString("## 📊 Scores\n\n")
	b.WriteString("| Metric | Score | Status |\n")
	b.WriteString("|--------|-------|--------|\n")
	fmt.Fprintf(&b, "| Security | %d/100 | %s |\n", result.SecurityScore, scoreStatus(result.SecurityScore))
	fmt.Fprintf(&b, "| Quality | %d/100 | %s |\n\n", result.QualityScore, scoreStatus(result.QualityScore))

	fmt.Fprintf(&b, "## 🎯 Recommendation: **%s**\n\n", result.Approval)

	if result.Summary != "" {
		fmt.Fprintf(&b, "## 📝 Summary\n\n%s\n\n", result.Summary)
	}

	if len(result.Vulnerabilities) > 0 {
		fmt.Fprintf(&b, "## 🚨 Security Vulnerabilities (%d)\n\n", len(result.Vulnerabilities))
		for i, vuln := range result.Vulnerabilities {
			r.writeFinding(&b, i+1, vuln.Type, vuln.Severity, vuln.File, vuln.Description, vuln.Recommendation)
		}
	}

	if len(result.Issues) > 0 {
		fmt.Fprintf(&b, "## ⚠️ Code Quality Issues (%d)\n\n", len(result.Issues))
		for i, issue := range result.Issues {
			r.writeFinding(&b, i+1, issue.Type, issue.Severity, issue.File, issue.Description, issue.Recommendation)
		}
	}

	if len(result.Recommendations) > 0 {
		b.WriteString("## 💡 Recommendations\n\n")
		for i, rec := range result.Recommendations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n")
	b.WriteString("*Generated by AI Code Reviewer v1.0*")

	return b.String()
}

func (r *Renderer) writeFinding(b *strings.Builder, index int, findingType, severity, file, description, recommendation string) {
	if findingType == "" {
		findingType = domain.UnknownType
	}
	if severity == "" {
		severity = domain.SeverityMedium
	}
	title := r.caser.String(strings.ReplaceAll(findingType, "_", " "))

	fmt.Fprintf(b, "### %s %d. %s\n\n", severityMarker(severity), index, title)
	fmt.Fprintf(b, "**File:** `%s`\n", orNA(file))
	fmt.Fprintf(b, "**Severity:** %s\n\n", severity)
	fmt.Fprintf(b, "**Description:** %s\n\n", orDefault(description, domain.NoDescriptionProvided))
	fmt.Fprintf(b, "**Recommendation:** %s\n\n", orDefault(recommendation, domain.NoRecommendation))
}

// scoreStatus maps a score to its tier label.
func scoreStatus(score int) string {
	switch {
	case score >= 90:
		return "🟢 Excellent"
	case score >= 70:
		return "🟡 Good"
	case score >= 50:
		return "🟠 Fair"
	default:
		return "🔴 Poor"
	}
}

var severityMarkers = map[string]string{
	domain.SeverityCritical: "🚨",
	domain.SeverityHigh:     "🔴",
	domain.SeverityMedium:   "🟡",
	domain.SeverityLow:      "🟢",
}

// severityMarker returns the marker for a severity tag; unrecognized tags
// get a generic warning marker.
func severityMarker(severity string) string {
	if m, ok := severityMarkers[severity]; ok {
		return m
	}
	return "⚠️"
}

func prNumber(pr domain.PullRequest) string {
	if pr.Number == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", pr.Number)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
