package review

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/pr-reviewer/internal/domain"
)

type stubProvider struct {
	payload map[string]any
	err     error

	gotRequest ProviderRequest
}

func (s *stubProvider) Review(_ context.Context, req ProviderRequest) (ProviderResult, error) {
	s.gotRequest = req
	if s.err != nil {
		return ProviderResult{}, s.err
	}
	return ProviderResult{ProviderName: "stub", Model: "stub-1", Payload: s.payload}, nil
}

type stubRedactor struct {
	err error
}

func (s *stubRedactor) Redact(input string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return strings.ReplaceAll(input, "hunter2", "[REDACTED]"), nil
}

func TestReviewPullRequestNormalizesPayload(t *testing.T) {
	provider := &stubProvider{payload: map[string]any{
		"security_score": float64(250),
		"quality_score":  float64(-10),
		"approval":       "SHIP_IT",
		"summary":        "looks risky",
		"ai_confidence":  float64(3.5),
	}}

	o := NewOrchestrator(provider)
	result, err := o.ReviewPullRequest(context.Background(), Request{
		Title: "Add login endpoint",
		Body:  "Implements session login",
		Files: []domain.ChangedFile{{Filename: "auth.go", Status: domain.FileStatusAdded}},
	})

	require.NoError(t, err)
	assert.Equal(t, 100, result.SecurityScore)
	assert.Equal(t, 0, result.QualityScore)
	assert.Equal(t, domain.ApprovalComment, result.Approval)
	assert.Equal(t, "looks risky", result.Summary)
	assert.Equal(t, 1.0, result.AIConfidence)
}

func TestReviewPullRequestPromptContainsRequest(t *testing.T) {
	provider := &stubProvider{payload: map[string]any{"summary": "ok"}}

	o := NewOrchestrator(provider, WithMaxTokens(2048))
	_, err := o.ReviewPullRequest(context.Background(), Request{
		Title: "Fix race in cache",
		Body:  "Guards the map with a mutex",
		Files: []domain.ChangedFile{
			{Filename: "cache.go", Status: domain.FileStatusModified, Patch: "@@ -1 +1 @@\n-old\n+new"},
		},
		Preferences: map[string]any{"focus": "concurrency"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2048, provider.gotRequest.MaxTokens)
	assert.Contains(t, provider.gotRequest.Prompt, "Fix race in cache")
	assert.Contains(t, provider.gotRequest.Prompt, "Guards the map with a mutex")
	assert.Contains(t, provider.gotRequest.Prompt, "cache.go")
	assert.Contains(t, provider.gotRequest.Prompt, "focus: concurrency")
	assert.Contains(t, provider.gotRequest.Prompt, `"security_score"`)
}

func TestReviewPullRequestRedactsPatches(t *testing.T) {
	provider := &stubProvider{payload: map[string]any{"summary": "ok"}}

	o := NewOrchestrator(provider, WithRedactor(&stubRedactor{}))
	_, err := o.ReviewPullRequest(context.Background(), Request{
		Title: "Config change",
		Files: []domain.ChangedFile{
			{Filename: "config.yaml", Status: domain.FileStatusModified, Patch: "+password: hunter2"},
		},
	})

	require.NoError(t, err)
	assert.Contains(t, provider.gotRequest.Prompt, "[REDACTED]")
	assert.NotContains(t, provider.gotRequest.Prompt, "hunter2")
}

func TestReviewPullRequestRedactorFailure(t *testing.T) {
	provider := &stubProvider{payload: map[string]any{"summary": "ok"}}

	o := NewOrchestrator(provider, WithRedactor(&stubRedactor{err: errors.New("pattern error")}))
	_, err := o.ReviewPullRequest(context.Background(), Request{
		Title: "Config change",
		Files: []domain.ChangedFile{{Filename: "a.go", Patch: "+x"}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redacting patches")
}

func TestReviewPullRequestProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("rate limited")}

	o := NewOrchestrator(provider)
	_, err := o.ReviewPullRequest(context.Background(), Request{
		Title: "Anything",
		Files: []domain.ChangedFile{},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider review")
}

func TestReviewPullRequestNilFiles(t *testing.T) {
	o := NewOrchestrator(&stubProvider{payload: map[string]any{}})

	_, err := o.ReviewPullRequest(context.Background(), Request{Title: "No files"})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"files"}, vErr.Missing)
}

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		missing []string
	}{
		{
			name: "complete",
			payload: map[string]any{
				"pr_title": "t", "pr_body": "b", "files": []any{},
			},
		},
		{
			name:    "all missing",
			payload: map[string]any{},
			missing: []string{"files", "pr_body", "pr_title"},
		},
		{
			name:    "files missing",
			payload: map[string]any{"pr_title": "t", "pr_body": ""},
			missing: []string{"files"},
		},
		{
			name: "empty values still count as present",
			payload: map[string]any{
				"pr_title": "", "pr_body": "", "files": nil,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(tt.payload)
			if len(tt.missing) == 0 {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.missing, vErr.Missing)
		})
	}
}
