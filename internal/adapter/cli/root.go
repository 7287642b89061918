// Package cli wires the reviewer into a Cobra command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkyoung/pr-reviewer/internal/domain"
	"github.com/bkyoung/pr-reviewer/internal/usecase/review"
)

// ErrVersionRequested indicates the user requested the CLI version and no
// further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Reviewer runs a review for an assembled request.
type Reviewer interface {
	ReviewPullRequest(ctx context.Context, req review.Request) (domain.ReviewResult, error)
}

// LocalRepo reads changed files out of a local repository.
type LocalRepo interface {
	ListChangedFiles(ctx context.Context, baseRef, targetRef string) ([]domain.ChangedFile, error)
	CurrentBranch(ctx context.Context) (string, error)
}

// Renderer produces the Markdown report for a result.
type Renderer interface {
	Render(result domain.ReviewResult, pr domain.PullRequest) string
}

// ServerRunner serves the HTTP endpoints until the context is cancelled.
type ServerRunner interface {
	Run(ctx context.Context, addr string) error
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
	InReader  io.Reader
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Reviewer    Reviewer
	LocalRepo   LocalRepo
	Renderer    Renderer
	Server      ServerRunner
	Args        Arguments
	DefaultPort int
	Version     string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "prr",
		Short: "AI pull request reviewer",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)
	if deps.Args.InReader != nil {
		root.SetIn(deps.Args.InReader)
	}

	root.AddCommand(serveCommand(deps))

	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Run a review without a webhook",
	}
	reviewCmd.AddCommand(localCommand(deps))
	reviewCmd.AddCommand(requestCommand(deps))
	root.AddCommand(reviewCmd)

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func serveCommand(deps Dependencies) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the webhook and review endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Server == nil {
				return fmt.Errorf("server not configured")
			}
			if port <= 0 || port > 65535 {
				return fmt.Errorf("port %d out of range", port)
			}
			addr := fmt.Sprintf(":%d", port)
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "listening on %s\n", addr)
			return deps.Server.Run(cmd.Context(), addr)
		},
	}

	defaultPort := deps.DefaultPort
	if defaultPort == 0 {
		defaultPort = 5000
	}
	cmd.Flags().IntVar(&port, "port", defaultPort, "Port to listen on")

	return cmd
}
