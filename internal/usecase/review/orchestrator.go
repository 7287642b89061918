// Package review orchestrates AI-assisted pull request reviews. It owns the
// ports the outer adapters implement (LLM providers, file fetchers, redaction)
// and is the only place where a loose provider payload becomes a
// domain.ReviewResult.
package review

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bkyoung/pr-reviewer/internal/domain"
)

// ProviderRequest is the minimal contract handed to an LLM provider.
type ProviderRequest struct {
	Prompt    string
	MaxTokens int
}

// ProviderResult carries the provider's parsed response payload. Payload is a
// loose map because providers return whatever the model emitted; callers must
// pass it through domain.ReviewResultFromPayload before trusting any field.
type ProviderResult struct {
	ProviderName string
	Model        string
	Payload      map[string]any
}

// Provider is implemented by LLM adapters (anthropic, static).
type Provider interface {
	Review(ctx context.Context, req ProviderRequest) (ProviderResult, error)
}

// FileFetcher retrieves the changed files for a pull request. repo is the
// "owner/name" form.
type FileFetcher interface {
	ListPullRequestFiles(ctx context.Context, repo string, number int) ([]domain.ChangedFile, error)
}

// Redactor scrubs sensitive content from text before it leaves the process.
type Redactor interface {
	Redact(input string) (string, error)
}

// Request is a fully-assembled review request: the PR metadata plus the
// changed files to analyze.
type Request struct {
	Title       string
	Body        string
	Files       []domain.ChangedFile
	Preferences map[string]any
	PR          domain.PullRequest
}

// ValidationError reports required request fields that were absent.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// RequiredFields are the keys a direct review payload must carry.
var RequiredFields = []string{"pr_title", "pr_body", "files"}

// ValidatePayload checks a decoded direct-review payload for the required
// keys. Presence is what matters; empty values are acceptable.
func ValidatePayload(payload map[string]any) error {
	var missing []string
	for _, field := range RequiredFields {
		if _, ok := payload[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Orchestrator coordinates a single review: redact, build the prompt, call
// the provider, normalize the result.
type Orchestrator struct {
	provider  Provider
	redactor  Redactor
	logger    Logger
	maxTokens int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRedactor installs a redactor applied to file patches before they are
// embedded in the prompt.
func WithRedactor(r Redactor) Option {
	return func(o *Orchestrator) { o.redactor = r }
}

// WithLogger installs a structured logger.
func WithLogger(l Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMaxTokens overrides the response token budget passed to the provider.
func WithMaxTokens(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

const defaultMaxTokens = 4096

// NewOrchestrator builds an orchestrator around the given provider.
func NewOrchestrator(provider Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:  provider,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ReviewPullRequest runs one review end to end. The returned result is always
// normalized: scores clamped, approval coerced, slices non-nil.
func (o *Orchestrator) ReviewPullRequest(ctx context.Context, req Request) (domain.ReviewResult, error) {
	if req.Files == nil {
		return domain.ReviewResult{}, &ValidationError{Missing: []string{"files"}}
	}

	files := req.Files
	if o.redactor != nil {
		redacted, err := o.redactFiles(files)
		if err != nil {
			return domain.ReviewResult{}, fmt.Errorf("redacting patches: %w", err)
		}
		files = redacted
	}

	prompt := BuildReviewPrompt(req.Title, req.Body, files, req.Preferences)

	o.logInfo("starting review", map[string]interface{}{
		"title":      req.Title,
		"file_count": len(files),
	})

	providerRes, err := o.provider.Review(ctx, ProviderRequest{
		Prompt:    prompt,
		MaxTokens: o.maxTokens,
	})
	if err != nil {
		o.logWarning("provider review failed", map[string]interface{}{
			"error": err.Error(),
		})
		return domain.ReviewResult{}, fmt.Errorf("provider review: %w", err)
	}

	result := domain.ReviewResultFromPayload(providerRes.Payload)

	o.logInfo("review complete", map[string]interface{}{
		"provider":        providerRes.ProviderName,
		"model":           providerRes.Model,
		"overall_score":   result.OverallScore(),
		"critical_issues": result.CriticalIssuesCount(),
		"approval":        result.Approval,
	})

	return result, nil
}

func (o *Orchestrator) redactFiles(files []domain.ChangedFile) ([]domain.ChangedFile, error) {
	out := make([]domain.ChangedFile, len(files))
	copy(out, files)
	for i := range out {
		if out[i].Patch == "" {
			continue
		}
		clean, err := o.redactor.Redact(out[i].Patch)
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", out[i].Filename, err)
		}
		out[i].Patch = clean
	}
	return out, nil
}

func (o *Orchestrator) logInfo(msg string, fields map[string]interface{}) {
	if o.logger != nil {
		o.logger.LogInfo(msg, fields)
	}
}

func (o *Orchestrator) logWarning(msg string, fields map[string]interface{}) {
	if o.logger != nil {
		o.logger.LogWarning(msg, fields)
	}
}
