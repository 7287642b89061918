// Package httpserver exposes the reviewer over HTTP: a health check, the
// GitHub webhook receiver, and a direct review endpoint.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsonout "github.com/bkyoung/pr-reviewer/internal/adapter/output/json"
	"github.com/bkyoung/pr-reviewer/internal/adapter/output/markdown"
	"github.com/bkyoung/pr-reviewer/internal/domain"
	"github.com/bkyoung/pr-reviewer/internal/usecase/review"
	"github.com/bkyoung/pr-reviewer/internal/usecase/webhook"
)

const serviceName = "ai-code-reviewer"

// maxBodyBytes caps inbound request bodies. Webhook payloads for large PRs
// stay well under this.
const maxBodyBytes = 10 << 20

// Server wires the HTTP endpoints to the webhook and review use cases.
type Server struct {
	verifier   *webhook.Verifier
	dispatcher *webhook.Dispatcher
	reviewer   webhook.Reviewer
	renderer   *markdown.Renderer
	summary    *jsonout.SummaryBuilder
	logger     review.Logger
	now        func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger installs a structured logger.
func WithLogger(l review.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock overrides the timestamp source (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer builds the HTTP layer around the given collaborators.
func NewServer(verifier *webhook.Verifier, dispatcher *webhook.Dispatcher, reviewer webhook.Reviewer, renderer *markdown.Renderer, summary *jsonout.SummaryBuilder, opts ...Option) *Server {
	s := &Server{
		verifier:   verifier,
		dispatcher: dispatcher,
		reviewer:   reviewer,
		renderer:   renderer,
		summary:    summary,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the http.Handler for all endpoints.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthCheck)
	mux.HandleFunc("POST /webhook/github", s.githubWebhook)
	mux.HandleFunc("POST /review", s.directReview)

	return mux
}

// Run serves the router until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.timestamp(),
		"service":   serviceName,
	})
}

func (s *Server) githubWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read request body")
		return
	}

	if !s.verifier.Verify(body, r.Header.Get(webhook.SignatureHeader)) {
		s.logWarning("invalid webhook signature", nil)
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	// GitHub always sends the event header; deliveries without one are
	// treated as pull_request for compatibility with bare test clients.
	eventType := r.Header.Get("X-GitHub-Event")
	if eventType == "" {
		eventType = webhook.EventPullRequest
	}

	result, err := s.dispatcher.Dispatch(r.Context(), eventType, payload)
	if err != nil {
		s.logWarning("webhook dispatch failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Internal server error",
			"message": err.Error(),
		})
		return
	}

	switch result.Outcome {
	case webhook.OutcomeIgnored:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Event ignored"})
	case webhook.OutcomeForbidden:
		writeError(w, http.StatusForbidden, "Repository not allowed")
	case webhook.OutcomeReviewed:
		report := s.renderer.Render(result.Review, result.PR)
		writeJSON(w, http.StatusOK, s.summary.BuildWebhookResponse(result.Review, result.PR, report))
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) directReview(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read request body")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := review.ValidatePayload(payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    "Missing required fields",
			"required": review.RequiredFields,
		})
		return
	}

	req := requestFromPayload(payload)
	result, err := s.reviewer.ReviewPullRequest(r.Context(), req)
	if err != nil {
		var vErr *review.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":    "Missing required fields",
				"required": vErr.Missing,
			})
			return
		}
		s.logWarning("direct review failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Internal server error",
			"message": err.Error(),
		})
		return
	}

	report := s.renderer.Render(result, req.PR)
	writeJSON(w, http.StatusOK, s.summary.BuildReviewResponse(result, report))
}

// requestFromPayload assembles a review request from a direct review body.
// The files entries are normalized the same way webhook files are.
func requestFromPayload(payload map[string]any) review.Request {
	req := review.Request{
		Files: []domain.ChangedFile{},
	}
	req.Title, _ = payload["pr_title"].(string)
	req.Body, _ = payload["pr_body"].(string)

	if rawFiles, ok := payload["files"].([]any); ok {
		for _, raw := range rawFiles {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			req.Files = append(req.Files, domain.ChangedFileFromPayload(entry))
		}
	}

	if prefs, ok := payload["preferences"].(map[string]any); ok {
		req.Preferences = prefs
	}

	req.PR.Title = req.Title
	switch n := payload["pr_number"].(type) {
	case float64:
		req.PR.Number = int(n)
	case int:
		req.PR.Number = n
	}
	req.PR.URL, _ = payload["pr_url"].(string)

	return req
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	buf, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return buf, nil
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Server) logWarning(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.LogWarning(msg, fields)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
