package http

import (
	"fmt"
	"regexp"
)

const (
	// MaxLoggedResponseLength is the maximum length of response text to
	// include in logs. Responses longer than this are truncated to keep
	// user code and secrets out of log aggregators.
	MaxLoggedResponseLength = 200
)

// TruncateForLogging safely truncates a response string for logging purposes.
// Returns the first MaxLoggedResponseLength characters plus a truncation
// indicator if truncated.
func TruncateForLogging(response string) string {
	if len(response) <= MaxLoggedResponseLength {
		return response
	}
	return response[:MaxLoggedResponseLength] + fmt.Sprintf("... [truncated, total length=%d bytes]", len(response))
}

var sensitiveQueryParams = []string{"key", "apiKey", "api_key", "token", "access_token"}

// RedactURLSecrets redacts API keys and other secrets from URLs in error
// messages, so credentials passed as query parameters never reach logs.
//
// Example:
//
//	input:  "https://api.example.com/endpoint?key=secret123&foo=bar"
//	output: "https://api.example.com/endpoint?key=[REDACTED]&foo=bar"
func RedactURLSecrets(text string) string {
	if text == "" {
		return text
	}

	result := text
	for _, param := range sensitiveQueryParams {
		re := regexp.MustCompile(param + `=([^&"\s]+)`)
		result = re.ReplaceAllString(result, param+"=[REDACTED]")
	}

	return result
}
