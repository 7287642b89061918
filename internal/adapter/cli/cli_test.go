package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/pr-reviewer/internal/domain"
	"github.com/bkyoung/pr-reviewer/internal/usecase/review"
)

type stubReviewer struct {
	result domain.ReviewResult
	err    error

	gotRequest review.Request
}

func (s *stubReviewer) ReviewPullRequest(_ context.Context, req review.Request) (domain.ReviewResult, error) {
	s.gotRequest = req
	return s.result, s.err
}

type stubRepo struct {
	files  []domain.ChangedFile
	branch string
	err    error

	gotBase   string
	gotTarget string
}

func (s *stubRepo) ListChangedFiles(_ context.Context, baseRef, targetRef string) ([]domain.ChangedFile, error) {
	s.gotBase = baseRef
	s.gotTarget = targetRef
	return s.files, s.err
}

func (s *stubRepo) CurrentBranch(_ context.Context) (string, error) {
	if s.branch == "" {
		return "", errors.New("detached HEAD")
	}
	return s.branch, nil
}

type stubRenderer struct{}

func (stubRenderer) Render(result domain.ReviewResult, pr domain.PullRequest) string {
	return "# report for " + pr.Title
}

type stubServer struct {
	gotAddr string
	err     error
}

func (s *stubServer) Run(_ context.Context, addr string) error {
	s.gotAddr = addr
	return s.err
}

func goodResult() domain.ReviewResult {
	return domain.NewReviewResult(domain.ReviewResultInput{
		SecurityScore: 80,
		QualityScore:  85,
		Approval:      domain.ApprovalComment,
		Summary:       "fine",
	})
}

func runCommand(t *testing.T, deps Dependencies, args ...string) (string, string, error) {
	t.Helper()
	var out, errBuf bytes.Buffer
	deps.Args.OutWriter = &out
	deps.Args.ErrWriter = &errBuf
	root := NewRootCommand(deps)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errBuf.String(), err
}

func TestVersionFlag(t *testing.T) {
	out, _, err := runCommand(t, Dependencies{Version: "v1.2.3"}, "--version")

	require.ErrorIs(t, err, ErrVersionRequested)
	assert.Equal(t, "v1.2.3\n", out)
}

func TestServeCommand(t *testing.T) {
	server := &stubServer{}
	_, errOut, err := runCommand(t, Dependencies{Server: server, DefaultPort: 5000}, "serve", "--port", "8080")

	require.NoError(t, err)
	assert.Equal(t, ":8080", server.gotAddr)
	assert.Contains(t, errOut, "listening on :8080")
}

func TestServeCommandBadPort(t *testing.T) {
	_, _, err := runCommand(t, Dependencies{Server: &stubServer{}}, "serve", "--port", "99999")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReviewLocal(t *testing.T) {
	reviewer := &stubReviewer{result: goodResult()}
	repo := &stubRepo{files: []domain.ChangedFile{{Filename: "main.go", Status: "modified"}}}
	deps := Dependencies{Reviewer: reviewer, LocalRepo: repo, Renderer: stubRenderer{}}

	out, _, err := runCommand(t, deps, "review", "local", "feature-branch", "--base", "develop", "--format", "markdown")

	require.NoError(t, err)
	assert.Equal(t, "develop", repo.gotBase)
	assert.Equal(t, "feature-branch", repo.gotTarget)
	assert.Contains(t, reviewer.gotRequest.Title, "develop...feature-branch")
	assert.Contains(t, out, "# report for")
}

func TestReviewLocalDetectsBranch(t *testing.T) {
	reviewer := &stubReviewer{result: goodResult()}
	repo := &stubRepo{
		files:  []domain.ChangedFile{{Filename: "a.go"}},
		branch: "feature-x",
	}
	deps := Dependencies{Reviewer: reviewer, LocalRepo: repo, Renderer: stubRenderer{}}

	_, _, err := runCommand(t, deps, "review", "local", "--format", "json")

	require.NoError(t, err)
	assert.Equal(t, "feature-x", repo.gotTarget)
}

func TestReviewLocalNoChanges(t *testing.T) {
	deps := Dependencies{
		Reviewer:  &stubReviewer{},
		LocalRepo: &stubRepo{files: []domain.ChangedFile{}, branch: "main"},
		Renderer:  stubRenderer{},
	}

	_, _, err := runCommand(t, deps, "review", "local", "main")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no changes")
}

func TestReviewLocalJSONOutput(t *testing.T) {
	reviewer := &stubReviewer{result: goodResult()}
	deps := Dependencies{
		Reviewer:  reviewer,
		LocalRepo: &stubRepo{files: []domain.ChangedFile{{Filename: "a.go"}}},
		Renderer:  stubRenderer{},
	}

	out, _, err := runCommand(t, deps, "review", "local", "branch", "--format", "json")

	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, float64(80), decoded["security_score"])
}

func TestReviewRequestFromFile(t *testing.T) {
	payload := map[string]any{
		"pr_title": "Add endpoint",
		"pr_body":  "desc",
		"files": []any{
			map[string]any{"filename": "api.go", "status": "added", "patch": "+handler"},
		},
		"preferences": map[string]any{"focus": "security"},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	reviewer := &stubReviewer{result: goodResult()}
	deps := Dependencies{Reviewer: reviewer, Renderer: stubRenderer{}}

	out, _, err := runCommand(t, deps, "review", "request", "--file", path, "--format", "markdown")

	require.NoError(t, err)
	assert.Equal(t, "Add endpoint", reviewer.gotRequest.Title)
	require.Len(t, reviewer.gotRequest.Files, 1)
	assert.Equal(t, "api.go", reviewer.gotRequest.Files[0].Filename)
	assert.Equal(t, map[string]any{"focus": "security"}, reviewer.gotRequest.Preferences)
	assert.Contains(t, out, "# report for Add endpoint")
}

func TestReviewRequestFromStdin(t *testing.T) {
	reviewer := &stubReviewer{result: goodResult()}
	deps := Dependencies{
		Reviewer: reviewer,
		Renderer: stubRenderer{},
		Args: Arguments{
			InReader: strings.NewReader(`{"pr_title": "t", "pr_body": "b", "files": []}`),
		},
	}

	_, _, err := runCommand(t, deps, "review", "request", "--format", "json")

	require.NoError(t, err)
	assert.Equal(t, "t", reviewer.gotRequest.Title)
}

func TestReviewRequestMissingFields(t *testing.T) {
	deps := Dependencies{
		Reviewer: &stubReviewer{},
		Renderer: stubRenderer{},
		Args:     Arguments{InReader: strings.NewReader(`{"pr_title": "only"}`)},
	}

	_, _, err := runCommand(t, deps, "review", "request")

	var vErr *review.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Missing, "files")
	assert.Contains(t, vErr.Missing, "pr_body")
}

func TestReviewRequestInvalidJSON(t *testing.T) {
	deps := Dependencies{
		Reviewer: &stubReviewer{},
		Renderer: stubRenderer{},
		Args:     Arguments{InReader: strings.NewReader(`{broken`)},
	}

	_, _, err := runCommand(t, deps, "review", "request")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse request payload")
}

func TestUnknownFormat(t *testing.T) {
	deps := Dependencies{
		Reviewer:  &stubReviewer{result: goodResult()},
		LocalRepo: &stubRepo{files: []domain.ChangedFile{{Filename: "a.go"}}},
		Renderer:  stubRenderer{},
	}

	_, _, err := runCommand(t, deps, "review", "local", "branch", "--format", "yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
