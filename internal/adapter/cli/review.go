package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bkyoung/pr-reviewer/internal/domain"
	"github.com/bkyoung/pr-reviewer/internal/usecase/review"
)

const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

func localCommand(deps Dependencies) *cobra.Command {
	var baseRef string
	var targetRef string
	var detectTarget bool
	var title string
	var body string
	var format string

	cmd := &cobra.Command{
		Use:   "local [target]",
		Short: "Review local changes between two refs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.LocalRepo == nil {
				return fmt.Errorf("local repository access not configured")
			}
			if len(args) > 0 {
				targetRef = args[0]
			}
			ctx := cmd.Context()
			if targetRef == "" && detectTarget {
				resolved, err := deps.LocalRepo.CurrentBranch(ctx)
				if err != nil {
					return fmt.Errorf("detect target branch: %w", err)
				}
				targetRef = resolved
			}
			if targetRef == "" {
				return fmt.Errorf("target ref not specified; pass as an argument or use --target")
			}

			files, err := deps.LocalRepo.ListChangedFiles(ctx, baseRef, targetRef)
			if err != nil {
				return fmt.Errorf("list changed files: %w", err)
			}
			if len(files) == 0 {
				return fmt.Errorf("no changes between %s and %s", baseRef, targetRef)
			}

			if title == "" {
				title = fmt.Sprintf("Local changes: %s...%s", baseRef, targetRef)
			}

			result, err := deps.Reviewer.ReviewPullRequest(ctx, review.Request{
				Title: title,
				Body:  body,
				Files: files,
			})
			if err != nil {
				return err
			}

			return printResult(cmd, deps, result, domain.PullRequest{Title: title}, format)
		},
	}

	cmd.Flags().StringVar(&baseRef, "base", "main", "Base reference to diff against")
	cmd.Flags().StringVar(&targetRef, "target", "", "Target ref to review (overrides positional)")
	cmd.Flags().BoolVar(&detectTarget, "detect-target", true, "Use the checked out branch when no target is provided")
	cmd.Flags().StringVar(&title, "title", "", "Title describing the change")
	cmd.Flags().StringVar(&body, "body", "", "Description of the change")
	cmd.Flags().StringVar(&format, "format", "", "Output format: markdown or json (default depends on terminal)")

	return cmd
}

func requestCommand(deps Dependencies) *cobra.Command {
	var inputFile string
	var format string

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Review a request payload from a file or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if inputFile == "" || inputFile == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(inputFile)
			}
			if err != nil {
				return fmt.Errorf("read request payload: %w", err)
			}

			var payload map[string]any
			if err := json.Unmarshal(data, &payload); err != nil {
				return fmt.Errorf("parse request payload: %w", err)
			}
			if err := review.ValidatePayload(payload); err != nil {
				return err
			}

			req := reviewRequestFromPayload(payload)
			result, err := deps.Reviewer.ReviewPullRequest(cmd.Context(), req)
			if err != nil {
				return err
			}

			return printResult(cmd, deps, result, req.PR, format)
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "Path to the request payload (\"-\" for stdin)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: markdown or json (default depends on terminal)")

	return cmd
}

// reviewRequestFromPayload mirrors the direct review endpoint's payload
// handling so file-based requests behave identically.
func reviewRequestFromPayload(payload map[string]any) review.Request {
	req := review.Request{
		Files: []domain.ChangedFile{},
	}
	req.Title, _ = payload["pr_title"].(string)
	req.Body, _ = payload["pr_body"].(string)

	if rawFiles, ok := payload["files"].([]any); ok {
		for _, raw := range rawFiles {
			if entry, ok := raw.(map[string]any); ok {
				req.Files = append(req.Files, domain.ChangedFileFromPayload(entry))
			}
		}
	}
	if prefs, ok := payload["preferences"].(map[string]any); ok {
		req.Preferences = prefs
	}
	req.PR.Title = req.Title

	return req
}

func printResult(cmd *cobra.Command, deps Dependencies, result domain.ReviewResult, pr domain.PullRequest, format string) error {
	if format == "" {
		format = defaultFormat(cmd.OutOrStdout())
	}

	switch format {
	case formatMarkdown:
		_, err := fmt.Fprintln(cmd.OutOrStdout(), deps.Renderer.Render(result, pr))
		return err
	case formatJSON:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		return fmt.Errorf("unknown format %q (want markdown or json)", format)
	}
}

// defaultFormat picks Markdown for interactive terminals and JSON when the
// output is piped.
func defaultFormat(out io.Writer) string {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return formatMarkdown
	}
	return formatJSON
}
