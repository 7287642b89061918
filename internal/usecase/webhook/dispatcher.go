package webhook

import (
	"context"
	"fmt"

	"github.com/bkyoung/pr-reviewer/internal/domain"
	"github.com/bkyoung/pr-reviewer/internal/usecase/review"
)

// EventPullRequest is the only GitHub event type the dispatcher reviews.
const EventPullRequest = "pull_request"

// Outcome classifies how a webhook delivery was handled.
type Outcome int

const (
	// OutcomeIgnored means the event does not trigger a review.
	OutcomeIgnored Outcome = iota
	// OutcomeForbidden means the repository is not on the allow-list.
	OutcomeForbidden
	// OutcomeReviewed means a review ran to completion.
	OutcomeReviewed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeReviewed:
		return "reviewed"
	default:
		return "unknown"
	}
}

// reviewableActions are the pull_request actions that trigger a review.
var reviewableActions = map[string]bool{
	"opened":      true,
	"synchronize": true,
	"reopened":    true,
}

// Reviewer runs a review for an assembled request.
type Reviewer interface {
	ReviewPullRequest(ctx context.Context, req review.Request) (domain.ReviewResult, error)
}

// Dispatcher routes verified pull_request events to the reviewer.
type Dispatcher struct {
	allowedRepos map[string]bool
	files        review.FileFetcher
	reviewer     Reviewer
	logger       review.Logger
}

// NewDispatcher builds a dispatcher. An empty allow-list permits every
// repository.
func NewDispatcher(allowedRepos []string, files review.FileFetcher, reviewer Reviewer, logger review.Logger) *Dispatcher {
	allowed := make(map[string]bool, len(allowedRepos))
	for _, repo := range allowedRepos {
		if repo != "" {
			allowed[repo] = true
		}
	}
	return &Dispatcher{
		allowedRepos: allowed,
		files:        files,
		reviewer:     reviewer,
		logger:       logger,
	}
}

// Result reports the dispatch outcome along with the review result when one
// was produced.
type Result struct {
	Outcome Outcome
	Reason  string
	PR      domain.PullRequest
	Review  domain.ReviewResult
}

// Dispatch handles one decoded pull_request event payload. Events with
// non-reviewable actions or malformed payloads are ignored, repositories off
// the allow-list are forbidden, and everything else runs a full review.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType string, payload map[string]any) (Result, error) {
	if eventType != EventPullRequest {
		return Result{Outcome: OutcomeIgnored, Reason: fmt.Sprintf("event %q not handled", eventType)}, nil
	}

	action, _ := payload["action"].(string)
	if !reviewableActions[action] {
		return Result{Outcome: OutcomeIgnored, Reason: fmt.Sprintf("action %q not reviewable", action)}, nil
	}

	pr, ok := extractPullRequest(payload)
	if !ok {
		return Result{Outcome: OutcomeIgnored, Reason: "payload missing pull_request or repository"}, nil
	}

	if !d.repoAllowed(pr.Repository) {
		d.logWarning("repository not allowed", map[string]interface{}{
			"repository": pr.Repository,
		})
		return Result{Outcome: OutcomeForbidden, Reason: fmt.Sprintf("repository %s not allowed", pr.Repository), PR: pr}, nil
	}

	files, err := d.files.ListPullRequestFiles(ctx, pr.Repository, pr.Number)
	if err != nil {
		return Result{PR: pr}, fmt.Errorf("fetching files for %s#%d: %w", pr.Repository, pr.Number, err)
	}

	result, err := d.reviewer.ReviewPullRequest(ctx, review.Request{
		Title: pr.Title,
		Body:  pr.Body,
		Files: files,
		PR:    pr,
	})
	if err != nil {
		return Result{PR: pr}, fmt.Errorf("reviewing %s#%d: %w", pr.Repository, pr.Number, err)
	}

	return Result{Outcome: OutcomeReviewed, PR: pr, Review: result}, nil
}

func (d *Dispatcher) repoAllowed(repo string) bool {
	if len(d.allowedRepos) == 0 {
		return true
	}
	return d.allowedRepos[repo]
}

func (d *Dispatcher) logWarning(msg string, fields map[string]interface{}) {
	if d.logger != nil {
		d.logger.LogWarning(msg, fields)
	}
}

// extractPullRequest pulls the PR metadata out of a webhook payload.
func extractPullRequest(payload map[string]any) (domain.PullRequest, bool) {
	prData, ok := payload["pull_request"].(map[string]any)
	if !ok {
		return domain.PullRequest{}, false
	}
	repoData, ok := payload["repository"].(map[string]any)
	if !ok {
		return domain.PullRequest{}, false
	}
	fullName, _ := repoData["full_name"].(string)
	if fullName == "" {
		return domain.PullRequest{}, false
	}

	pr := domain.PullRequest{Repository: fullName}
	switch n := prData["number"].(type) {
	case float64:
		pr.Number = int(n)
	case int:
		pr.Number = n
	}
	pr.Title, _ = prData["title"].(string)
	pr.Body, _ = prData["body"].(string)
	pr.URL, _ = prData["html_url"].(string)

	if pr.Number == 0 {
		return domain.PullRequest{}, false
	}
	return pr, true
}
