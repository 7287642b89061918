// Package redaction scrubs secrets from diff content before it is sent to
// an external model.
package redaction

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Engine performs regex-based secret detection over patch text.
type Engine struct {
	patterns []*regexp.Regexp
}

// NewEngine creates an engine with the built-in secret patterns plus any
// extra patterns supplied by configuration. Invalid extra patterns are an
// error rather than being silently dropped.
func NewEngine(extraPatterns ...string) (*Engine, error) {
	patterns := defaultPatterns()
	for _, p := range extraPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}
	return &Engine{patterns: patterns}, nil
}

// Redact replaces detected secrets with stable placeholders. The same secret
// always maps to the same placeholder, so repeated occurrences in a diff
// stay correlated.
func (e *Engine) Redact(input string) (string, error) {
	result := input
	placeholders := make(map[string]string)

	for _, pattern := range e.patterns {
		for _, match := range pattern.FindAllString(result, -1) {
			if _, seen := placeholders[match]; seen {
				continue
			}
			placeholders[match] = placeholderFor(match)
		}
	}

	for secret, placeholder := range placeholders {
		result = strings.ReplaceAll(result, secret, placeholder)
	}

	return result, nil
}

// IsRedacted reports whether content already carries redaction placeholders.
func (e *Engine) IsRedacted(content string) bool {
	return strings.Contains(content, "<REDACTED:")
}

// placeholderFor derives a stable placeholder from the secret's hash. The
// secret itself never appears in the output.
func placeholderFor(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return fmt.Sprintf("<REDACTED:%s>", hex.EncodeToString(hash[:])[:8])
}

func defaultPatterns() []*regexp.Regexp {
	patterns := []string{
		// Anthropic API keys (must come before the generic sk- pattern)
		`sk-ant-[a-zA-Z0-9\-]{20,}`,
		// OpenAI-style API keys
		`sk-[a-zA-Z0-9]{20,}`,
		// AWS Access Key ID
		`AKIA[0-9A-Z]{16}`,
		// AWS Secret Access Key (high-entropy value near an aws keyword)
		`aws.{0,20}?['\"][0-9a-zA-Z/+]{40}['\"]`,
		// GitHub tokens
		`gh[posr]_[a-zA-Z0-9]{20,}`,
		// Google API keys
		`AIza[0-9A-Za-z\-_]{35}`,
		// JWT tokens
		`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`,
		// Private keys (PEM format)
		`-----BEGIN\s+(?:RSA|EC|OPENSSH|DSA|ENCRYPTED)\s+PRIVATE\s+KEY-----[\s\S]*?-----END\s+(?:RSA|EC|OPENSSH|DSA|ENCRYPTED)\s+PRIVATE\s+KEY-----`,
		// Slack tokens
		`xox[baprs]-[a-zA-Z0-9\-]{10,}`,
		// Bearer tokens in headers
		`Bearer\s+[a-zA-Z0-9_\-\.]+`,
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		compiled = append(compiled, regexp.MustCompile(pattern))
	}
	return compiled
}
