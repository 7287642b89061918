package static

import (
	"context"

	"github.com/bkyoung/pr-reviewer/internal/usecase/review"
)

const providerName = "static"

// Provider implements the usecase Provider port with a canned payload.
type Provider struct {
	model string
}

// NewProvider constructs a static Provider.
func NewProvider(model string) *Provider {
	return &Provider{
		model: model,
	}
}

// Review returns a static, pre-determined review payload.
func (p *Provider) Review(ctx context.Context, req review.ProviderRequest) (review.ProviderResult, error) {
	payload := map[string]any{
		"security_score": 85,
		"quality_score":  90,
		"approval":       "COMMENT",
		"summary":        "This is a static review from a mock provider.",
		"vulnerabilities": []any{},
		"issues": []any{
			map[string]any{
				"type":           "style",
				"severity":       "LOW",
				"file":           "example.go",
				"line":           1,
				"description":    "This is a static finding.",
				"recommendation": "No recommendation.",
			},
		},
		"recommendations": []any{"This provider is for testing only."},
		"ai_confidence":   1.0,
	}

	return review.ProviderResult{
		ProviderName: providerName,
		Model:        p.model,
		Payload:      payload,
	}, nil
}
