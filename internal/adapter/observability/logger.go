// Package observability bridges the use case logging ports onto the shared
// structured logging infrastructure.
package observability

import (
	"context"

	llmhttp "github.com/bkyoung/pr-reviewer/internal/adapter/llm/http"
	"github.com/bkyoung/pr-reviewer/internal/usecase/review"
)

// ReviewLogger adapts llmhttp.Logger to the review.Logger port so the
// orchestrator and dispatcher share the same log transport as the LLM HTTP
// clients.
type ReviewLogger struct {
	logger llmhttp.Logger
}

// NewReviewLogger creates a new review logger adapter.
func NewReviewLogger(logger llmhttp.Logger) review.Logger {
	return &ReviewLogger{logger: logger}
}

// LogWarning logs a warning message with structured fields.
func (l *ReviewLogger) LogWarning(message string, fields map[string]interface{}) {
	l.logger.LogWarning(context.Background(), message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *ReviewLogger) LogInfo(message string, fields map[string]interface{}) {
	l.logger.LogInfo(context.Background(), message, fields)
}
