package domain

import "time"

// Severity levels reported for vulnerabilities and code issues.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

// Approval verdicts a review can carry.
const (
	ApprovalApprove        = "APPROVE"
	ApprovalRequestChanges = "REQUEST_CHANGES"
	ApprovalComment        = "COMMENT"
)

// Placeholder values used when the AI omits a field.
const (
	UnknownType           = "Unknown"
	NoDescriptionProvided = "No description provided"
	NoRecommendation      = "No recommendation provided"
)

// Vulnerability is a single security finding. Immutable once constructed;
// instances are created only from AI collaborator output.
type Vulnerability struct {
	Type           string   `json:"type"`
	Severity       string   `json:"severity"`
	File           string   `json:"file"`
	Line           string   `json:"line,omitempty"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	Matches        []string `json:"matches"`
}

// CodeIssue is a non-security quality finding. Type is an open-ended tag
// (code_quality, performance, maintainability, testing, ...).
type CodeIssue struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	File           string `json:"file"`
	Line           string `json:"line,omitempty"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// ComplexityAnalysis is an optional secondary judgement on the change set.
type ComplexityAnalysis struct {
	CognitiveComplexity   string `json:"cognitive_complexity"`
	MaintainabilityImpact string `json:"maintainability_impact"`
	TestingAdequacy       string `json:"testing_adequacy"`
}

// ReviewResult is the aggregate verdict for one pull-request review.
// Construct via NewReviewResult or ReviewResultFromPayload so the bounding
// invariants hold; never mutate after construction.
type ReviewResult struct {
	SecurityScore      int                 `json:"security_score"`
	QualityScore       int                 `json:"quality_score"`
	Vulnerabilities    []Vulnerability     `json:"vulnerabilities"`
	Issues             []CodeIssue         `json:"issues"`
	Summary            string              `json:"summary"`
	Recommendations    []string            `json:"recommendations"`
	Approval           string              `json:"approval"`
	AIConfidence       float64             `json:"ai_confidence"`
	ComplexityAnalysis *ComplexityAnalysis `json:"complexity_analysis,omitempty"`
	Timestamp          time.Time           `json:"timestamp"`
}

// ReviewResultInput captures the information required to create a ReviewResult.
type ReviewResultInput struct {
	SecurityScore      int
	QualityScore       int
	Vulnerabilities    []Vulnerability
	Issues             []CodeIssue
	Summary            string
	Recommendations    []string
	Approval           string
	AIConfidence       float64
	ComplexityAnalysis *ComplexityAnalysis
	Timestamp          time.Time
}

// NewReviewResult constructs a ReviewResult, enforcing the bounding
// invariants: scores clamp to [0,100], confidence clamps to [0.0,1.0],
// an unrecognized approval coerces to COMMENT, and a zero timestamp is
// replaced with the construction time. Construction never fails.
func NewReviewResult(input ReviewResultInput) ReviewResult {
	timestamp := input.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	vulnerabilities := input.Vulnerabilities
	if vulnerabilities == nil {
		vulnerabilities = []Vulnerability{}
	}
	issues := input.Issues
	if issues == nil {
		issues = []CodeIssue{}
	}
	recommendations := input.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}

	return ReviewResult{
		SecurityScore:      clampScore(input.SecurityScore),
		QualityScore:       clampScore(input.QualityScore),
		Vulnerabilities:    vulnerabilities,
		Issues:             issues,
		Summary:            input.Summary,
		Recommendations:    recommendations,
		Approval:           normalizeApproval(input.Approval),
		AIConfidence:       clampConfidence(input.AIConfidence),
		ComplexityAnalysis: input.ComplexityAnalysis,
		Timestamp:          timestamp,
	}
}

// OverallScore is the integer average of security and quality scores.
func (r ReviewResult) OverallScore() int {
	return (r.SecurityScore + r.QualityScore) / 2
}

// CriticalIssuesCount counts CRITICAL/HIGH vulnerabilities plus HIGH issues.
func (r ReviewResult) CriticalIssuesCount() int {
	count := 0
	for _, vuln := range r.Vulnerabilities {
		if vuln.Severity == SeverityCritical || vuln.Severity == SeverityHigh {
			count++
		}
	}
	for _, issue := range r.Issues {
		if issue.Severity == SeverityHigh {
			count++
		}
	}
	return count
}

// NeedsAttention reports whether the review warrants immediate follow-up.
func (r ReviewResult) NeedsAttention() bool {
	return r.SecurityScore < 70 ||
		r.QualityScore < 70 ||
		r.CriticalIssuesCount() > 0 ||
		r.Approval == ApprovalRequestChanges
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func clampConfidence(confidence float64) float64 {
	if confidence < 0.0 {
		return 0.0
	}
	if confidence > 1.0 {
		return 1.0
	}
	return confidence
}

func normalizeApproval(approval string) string {
	switch approval {
	case ApprovalApprove, ApprovalRequestChanges, ApprovalComment:
		return approval
	default:
		return ApprovalComment
	}
}
