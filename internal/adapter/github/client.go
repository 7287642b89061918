// Package github is an HTTP client for the GitHub REST API, scoped to the
// pull request endpoints the reviewer needs.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	llmhttp "github.com/bkyoung/pr-reviewer/internal/adapter/llm/http"
	"github.com/bkyoung/pr-reviewer/internal/domain"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second

	// filesPerPage is the maximum page size the API allows for the
	// pull request files endpoint.
	filesPerPage = 100
)

// Client is an HTTP client for the GitHub Pull Requests API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	retryConf  llmhttp.RetryConfig
}

// NewClient creates a new GitHub API client. The token should be a personal
// access token or GITHUB_TOKEN from Actions; an empty token makes
// unauthenticated requests.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryConf:  llmhttp.SingleAttempt(),
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimSuffix(url, "/")
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// SetRetryConfig replaces the retry policy.
func (c *Client) SetRetryConfig(conf llmhttp.RetryConfig) {
	c.retryConf = conf
}

// pullRequestFile is the wire shape of one entry from the files endpoint.
type pullRequestFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	Patch     string `json:"patch"`
}

// ListPullRequestFiles fetches every changed file for a pull request,
// following pagination. repo is the "owner/name" form.
func (c *Client) ListPullRequestFiles(ctx context.Context, repo string, number int) ([]domain.ChangedFile, error) {
	if !strings.Contains(repo, "/") {
		return nil, fmt.Errorf("repository %q must be in owner/name form", repo)
	}

	var files []domain.ChangedFile
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/pulls/%d/files?per_page=%d&page=%d",
			c.baseURL, repo, number, filesPerPage, page)

		pageFiles, err := c.fetchFilesPage(ctx, url)
		if err != nil {
			return nil, err
		}

		for _, f := range pageFiles {
			files = append(files, domain.ChangedFile{
				Filename:  f.Filename,
				Status:    f.Status,
				Additions: f.Additions,
				Deletions: f.Deletions,
				Changes:   f.Changes,
				Patch:     f.Patch,
				FileType:  domain.FileTypeForName(f.Filename),
			})
		}

		if len(pageFiles) < filesPerPage {
			break
		}
	}

	if files == nil {
		files = []domain.ChangedFile{}
	}
	return files, nil
}

func (c *Client) fetchFilesPage(ctx context.Context, url string) ([]pullRequestFile, error) {
	var resp *http.Response
	err := llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, "GET", url, nil)
		if reqErr != nil {
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeUnknown,
				Message:   reqErr.Error(),
				Retryable: false,
				Provider:  providerName,
			}
		}

		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		var callErr error
		resp, callErr = c.httpClient.Do(req)
		if callErr != nil {
			return llmhttp.NewTimeoutError(providerName, callErr.Error())
		}

		if resp.StatusCode >= 400 {
			bodyBytes, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				return &llmhttp.Error{
					Type:       llmhttp.ErrTypeUnknown,
					Message:    fmt.Sprintf("HTTP %d (failed to read response: %v)", resp.StatusCode, readErr),
					StatusCode: resp.StatusCode,
					Retryable:  resp.StatusCode >= 500,
					Provider:   providerName,
				}
			}
			return MapHTTPError(resp.StatusCode, bodyBytes)
		}

		return nil
	}, c.retryConf)

	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var pageFiles []pullRequestFile
	if err := json.NewDecoder(resp.Body).Decode(&pageFiles); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return pageFiles, nil
}
