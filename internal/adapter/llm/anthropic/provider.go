package anthropic

import (
	"context"
	"fmt"

	llmhttp "github.com/bkyoung/pr-reviewer/internal/adapter/llm/http"
	"github.com/bkyoung/pr-reviewer/internal/usecase/review"
)

const providerName = "anthropic"

// Client abstracts the Anthropic HTTP client behaviour we need.
type Client interface {
	Call(ctx context.Context, prompt string, options CallOptions) (*APIResponse, error)
}

// Provider implements the usecase Provider port against the Anthropic
// Messages API.
type Provider struct {
	model  string
	client Client
}

// NewProvider constructs a Provider for the supplied model.
func NewProvider(model string, client Client) *Provider {
	return &Provider{
		model:  model,
		client: client,
	}
}

// Review sends the prompt to Anthropic and returns the loose JSON payload
// extracted from the response. The payload is normalized into the result
// model by the caller; a response without parseable JSON degrades to a
// summary-only payload rather than failing the review.
func (p *Provider) Review(ctx context.Context, req review.ProviderRequest) (review.ProviderResult, error) {
	if p.client == nil {
		return review.ProviderResult{}, fmt.Errorf("anthropic client missing")
	}

	apiResp, err := p.client.Call(ctx, req.Prompt, CallOptions{
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return review.ProviderResult{}, fmt.Errorf("anthropic: %w", err)
	}

	payload, err := llmhttp.ParseReviewPayload(apiResp.Text)
	if err != nil {
		payload = map[string]any{
			"summary": apiResp.Text,
		}
	}

	return review.ProviderResult{
		ProviderName: providerName,
		Model:        apiResp.Model,
		Payload:      payload,
	}, nil
}
