package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bkyoung/pr-reviewer/internal/adapter/cli"
	"github.com/bkyoung/pr-reviewer/internal/adapter/git"
	githubadapter "github.com/bkyoung/pr-reviewer/internal/adapter/github"
	"github.com/bkyoung/pr-reviewer/internal/adapter/httpserver"
	"github.com/bkyoung/pr-reviewer/internal/adapter/llm/anthropic"
	llmhttp "github.com/bkyoung/pr-reviewer/internal/adapter/llm/http"
	"github.com/bkyoung/pr-reviewer/internal/adapter/llm/static"
	"github.com/bkyoung/pr-reviewer/internal/adapter/observability"
	jsonout "github.com/bkyoung/pr-reviewer/internal/adapter/output/json"
	"github.com/bkyoung/pr-reviewer/internal/adapter/output/markdown"
	"github.com/bkyoung/pr-reviewer/internal/config"
	"github.com/bkyoung/pr-reviewer/internal/redaction"
	"github.com/bkyoung/pr-reviewer/internal/usecase/review"
	"github.com/bkyoung/pr-reviewer/internal/usecase/webhook"
	"github.com/bkyoung/pr-reviewer/internal/version"
)

func main() {
	if err := run(); err != nil {
		// Redact API keys from URLs in error messages before logging
		log.Println(llmhttp.RedactURLSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "prr",
		EnvPrefix:   "PRR",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	logger := buildLogger(cfg.Observability)

	var reviewLogger review.Logger
	if logger != nil {
		reviewLogger = observability.NewReviewLogger(logger)
	}

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		return err
	}

	orchestratorOpts := []review.Option{
		review.WithMaxTokens(cfg.Anthropic.MaxTokens),
	}
	if reviewLogger != nil {
		orchestratorOpts = append(orchestratorOpts, review.WithLogger(reviewLogger))
	}
	if cfg.Redaction.Enabled {
		redactor, err := redaction.NewEngine(cfg.Redaction.Patterns...)
		if err != nil {
			return fmt.Errorf("redaction setup failed: %w", err)
		}
		orchestratorOpts = append(orchestratorOpts, review.WithRedactor(redactor))
	}
	orchestrator := review.NewOrchestrator(provider, orchestratorOpts...)

	githubClient := githubadapter.NewClient(cfg.GitHub.Token)
	githubClient.SetTimeout(llmhttp.ParseTimeout(cfg.HTTP.Timeout, 30*time.Second))
	githubClient.SetRetryConfig(llmhttp.BuildRetryConfig(cfg.HTTP))

	dispatcher := webhook.NewDispatcher(cfg.Webhook.AllowedRepos, githubClient, orchestrator, reviewLogger)
	verifier := webhook.NewVerifier(cfg.Webhook.Secret)

	reportClock := func() string {
		return time.Now().UTC().Format("2006-01-02 15:04:05")
	}
	responseClock := func() string {
		return time.Now().UTC().Format(time.RFC3339)
	}
	renderer := markdown.NewRenderer(reportClock)
	summary := jsonout.NewSummaryBuilder(responseClock)

	serverOpts := []httpserver.Option{}
	if reviewLogger != nil {
		serverOpts = append(serverOpts, httpserver.WithLogger(reviewLogger))
	}
	server := httpserver.NewServer(verifier, dispatcher, orchestrator, renderer, summary, serverOpts...)

	root := cli.NewRootCommand(cli.Dependencies{
		Reviewer:    orchestrator,
		LocalRepo:   git.NewEngine("."),
		Renderer:    renderer,
		Server:      validatedServer{cfg: cfg, server: server},
		DefaultPort: cfg.Server.Port,
		Version:     version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "prr"))
	}
	return paths
}

// buildLogger creates the shared structured logger if logging is enabled.
func buildLogger(cfg config.ObservabilityConfig) llmhttp.Logger {
	if !cfg.Logging.Enabled {
		return nil
	}
	level := llmhttp.ParseLogLevel(cfg.Logging.Level)
	format := llmhttp.ParseLogFormat(cfg.Logging.Format)
	return llmhttp.NewDefaultLogger(level, format, cfg.Logging.RedactAPIKeys)
}

// buildProvider creates the AI collaborator. With no API key configured the
// static provider stands in so the server still responds end to end.
func buildProvider(cfg config.Config, logger llmhttp.Logger) (review.Provider, error) {
	model := cfg.Anthropic.Model
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}

	if cfg.Anthropic.APIKey == "" {
		log.Println("Anthropic: no API key provided, using static provider")
		return static.NewProvider(model), nil
	}

	client := anthropic.NewHTTPClient(cfg.Anthropic.APIKey, model)
	client.SetTimeout(llmhttp.ParseTimeout(cfg.HTTP.Timeout, 60*time.Second))
	client.SetRetryConfig(llmhttp.BuildRetryConfig(cfg.HTTP))
	if logger != nil {
		client.SetLogger(logger)
	}
	return anthropic.NewProvider(model, client), nil
}

// validatedServer enforces the serving configuration before binding the
// listener. Debug mode skips the check so the static provider can serve
// locally without credentials.
type validatedServer struct {
	cfg    config.Config
	server *httpserver.Server
}

func (s validatedServer) Run(ctx context.Context, addr string) error {
	if !s.cfg.Server.Debug {
		if err := config.Validate(s.cfg); err != nil {
			return err
		}
	}
	return s.server.Run(ctx, addr)
}

// Compile-time interface compliance checks
var _ review.Provider = (*anthropic.Provider)(nil)
var _ review.Provider = (*static.Provider)(nil)
var _ review.FileFetcher = (*githubadapter.Client)(nil)
var _ review.Redactor = (*redaction.Engine)(nil)
var _ webhook.Reviewer = (*review.Orchestrator)(nil)
var _ cli.LocalRepo = (*git.Engine)(nil)
var _ cli.ServerRunner = (*httpserver.Server)(nil)
