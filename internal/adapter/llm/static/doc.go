// Package static provides a mock LLM provider that returns a static,
// pre-determined review. This is useful for testing the orchestrator
// and other parts of the system without making live API calls.
package static
