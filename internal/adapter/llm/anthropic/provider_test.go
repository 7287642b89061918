package anthropic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bkyoung/pr-reviewer/internal/adapter/llm/anthropic"
	"github.com/bkyoung/pr-reviewer/internal/domain"
	"github.com/bkyoung/pr-reviewer/internal/usecase/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	gotPrompt  string
	gotOptions anthropic.CallOptions
	response   *anthropic.APIResponse
	err        error
}

func (s *stubClient) Call(ctx context.Context, prompt string, options anthropic.CallOptions) (*anthropic.APIResponse, error) {
	s.gotPrompt = prompt
	s.gotOptions = options
	return s.response, s.err
}

func TestProvider_Review_ParsesPayload(t *testing.T) {
	client := &stubClient{
		response: &anthropic.APIResponse{
			Text:  "```json\n{\"security_score\": 88, \"quality_score\": 92, \"approval\": \"COMMENT\"}\n```",
			Model: "claude-3-5-sonnet-20241022",
		},
	}
	provider := anthropic.NewProvider("claude-3-5-sonnet-20241022", client)

	result, err := provider.Review(context.Background(), review.ProviderRequest{
		Prompt:    "review this",
		MaxTokens: 2048,
	})

	require.NoError(t, err)
	assert.Equal(t, "anthropic", result.ProviderName)
	assert.Equal(t, "claude-3-5-sonnet-20241022", result.Model)
	assert.Equal(t, "review this", client.gotPrompt)
	assert.Equal(t, 2048, client.gotOptions.MaxTokens)

	parsed := domain.ReviewResultFromPayload(result.Payload)
	assert.Equal(t, 88, parsed.SecurityScore)
	assert.Equal(t, 92, parsed.QualityScore)
}

func TestProvider_Review_NonJSONDegradesToSummary(t *testing.T) {
	client := &stubClient{
		response: &anthropic.APIResponse{
			Text:  "I could not produce structured output for this diff.",
			Model: "claude-3-5-sonnet-20241022",
		},
	}
	provider := anthropic.NewProvider("claude-3-5-sonnet-20241022", client)

	result, err := provider.Review(context.Background(), review.ProviderRequest{Prompt: "p", MaxTokens: 1024})

	require.NoError(t, err)
	assert.Equal(t, "I could not produce structured output for this diff.", result.Payload["summary"])
}

func TestProvider_Review_ClientError(t *testing.T) {
	client := &stubClient{err: errors.New("connection refused")}
	provider := anthropic.NewProvider("claude-3-5-sonnet-20241022", client)

	_, err := provider.Review(context.Background(), review.ProviderRequest{Prompt: "p", MaxTokens: 1024})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic")
}

func TestProvider_Review_NilClient(t *testing.T) {
	provider := anthropic.NewProvider("claude-3-5-sonnet-20241022", nil)

	_, err := provider.Review(context.Background(), review.ProviderRequest{Prompt: "p"})

	require.Error(t, err)
}
