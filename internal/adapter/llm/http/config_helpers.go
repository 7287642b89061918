package http

import (
	"time"

	"github.com/bkyoung/pr-reviewer/internal/config"
)

// ParseTimeout parses the configured timeout, falling back to the default.
// Negative durations are rejected (would cause runtime panic in
// http.Client.Timeout).
func ParseTimeout(configured string, defaultVal time.Duration) time.Duration {
	if configured != "" {
		if d, err := time.ParseDuration(configured); err == nil && d >= 0 {
			return d
		}
	}
	if defaultVal < 0 {
		return 60 * time.Second
	}
	return defaultVal
}

// BuildRetryConfig creates a RetryConfig from the global HTTP config.
// With the default maxRetries of 0 every collaborator call is a single
// attempt.
func BuildRetryConfig(httpCfg config.HTTPConfig) RetryConfig {
	result := SingleAttempt()

	if httpCfg.MaxRetries > 0 {
		result.MaxRetries = httpCfg.MaxRetries
	}
	result.InitialBackoff = parseDuration(httpCfg.InitialBackoff, result.InitialBackoff)
	result.MaxBackoff = parseDuration(httpCfg.MaxBackoff, result.MaxBackoff)
	if httpCfg.BackoffMultiplier > 0 {
		result.Multiplier = httpCfg.BackoffMultiplier
	}

	return result
}

func parseDuration(configured string, defaultVal time.Duration) time.Duration {
	if configured != "" {
		if d, err := time.ParseDuration(configured); err == nil && d >= 0 {
			return d
		}
	}
	return defaultVal
}
