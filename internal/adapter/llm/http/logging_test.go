package http_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	llmhttp "github.com/bkyoung/pr-reviewer/internal/adapter/llm/http"
)

func TestTruncateForLogging(t *testing.T) {
	short := "short response"
	assert.Equal(t, short, llmhttp.TruncateForLogging(short))

	long := strings.Repeat("a", 500)
	truncated := llmhttp.TruncateForLogging(long)
	assert.Contains(t, truncated, "[truncated, total length=500 bytes]")
	assert.Less(t, len(truncated), len(long))
}

func TestLogErrorTruncatesLongMessages(t *testing.T) {
	var buf bytes.Buffer
	previous := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(previous)

	logger := llmhttp.NewDefaultLogger(llmhttp.LogLevelError, llmhttp.LogFormatHuman, true)
	logger.LogError(context.Background(), llmhttp.ErrorLog{
		Provider:  "anthropic",
		Model:     "claude-3-5-sonnet-20241022",
		Timestamp: time.Now(),
		Error:     errors.New(strings.Repeat("b", 1000)),
	})

	output := buf.String()
	assert.Contains(t, output, "[truncated, total length=1000 bytes]")
	assert.NotContains(t, output, strings.Repeat("b", 300))
}

func TestRedactURLSecrets(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "key parameter",
			input: "https://api.example.com/v1?key=supersecret&foo=bar",
			want:  "https://api.example.com/v1?key=[REDACTED]&foo=bar",
		},
		{
			name:  "token parameter",
			input: "request to https://x.test?token=abc123 failed",
			want:  "request to https://x.test?token=[REDACTED] failed",
		},
		{
			name:  "no secrets",
			input: "https://api.example.com/v1/messages",
			want:  "https://api.example.com/v1/messages",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, llmhttp.RedactURLSecrets(tt.input))
		})
	}
}

func TestRedactAPIKey(t *testing.T) {
	logger := llmhttp.NewDefaultLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatHuman, true)
	assert.Equal(t, "[REDACTED-6789]", logger.RedactAPIKey("sk-ant-123456789"))
	assert.Equal(t, "[REDACTED]", logger.RedactAPIKey("abc"))

	open := llmhttp.NewDefaultLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatHuman, false)
	assert.Equal(t, "sk-ant-123456789", open.RedactAPIKey("sk-ant-123456789"))
}

func TestParseLogLevelAndFormat(t *testing.T) {
	assert.Equal(t, llmhttp.LogLevelDebug, llmhttp.ParseLogLevel("debug"))
	assert.Equal(t, llmhttp.LogLevelError, llmhttp.ParseLogLevel("ERROR"))
	assert.Equal(t, llmhttp.LogLevelInfo, llmhttp.ParseLogLevel("anything"))

	assert.Equal(t, llmhttp.LogFormatJSON, llmhttp.ParseLogFormat("json"))
	assert.Equal(t, llmhttp.LogFormatHuman, llmhttp.ParseLogFormat(""))
}
