package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bkyoung/pr-reviewer/internal/domain"
)

// maxPatchChars bounds how much of a single patch is embedded in the prompt.
// Oversized diffs get truncated with a marker rather than failing the review.
const maxPatchChars = 40000

// BuildReviewPrompt assembles the analysis prompt for a pull request. The
// prompt instructs the model to answer with a single JSON object matching the
// review result schema.
func BuildReviewPrompt(title, body string, files []domain.ChangedFile, preferences map[string]any) string {
	var b strings.Builder

	b.WriteString("Review the following pull request for security vulnerabilities and code quality issues.\n\n")

	b.WriteString("## Pull Request\n\n")
	fmt.Fprintf(&b, "Title: %s\n", title)
	if body != "" {
		fmt.Fprintf(&b, "Description:\n%s\n", body)
	}
	b.WriteString("\n")

	if len(preferences) > 0 {
		b.WriteString("## Reviewer Preferences\n\n")
		keys := make([]string, 0, len(preferences))
		for k := range preferences {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %v\n", k, preferences[k])
		}
		b.WriteString("\n")
	}

	b.WriteString("## Changed Files\n\n")
	if len(files) == 0 {
		b.WriteString("(no files provided)\n\n")
	}
	for _, f := range files {
		fmt.Fprintf(&b, "### %s (%s, +%d/-%d)\n\n", f.Filename, f.Status, f.Additions, f.Deletions)
		if f.Patch == "" {
			b.WriteString("(no patch available)\n\n")
			continue
		}
		patch := f.Patch
		if len(patch) > maxPatchChars {
			patch = patch[:maxPatchChars] + "\n... (patch truncated)"
		}
		fmt.Fprintf(&b, "```diff\n%s\n```\n\n", patch)
	}

	b.WriteString(responseFormatInstructions)

	return b.String()
}

const responseFormatInstructions = `## Response Format

Respond with a single JSON object and nothing else:

{
  "security_score": <0-100>,
  "quality_score": <0-100>,
  "approval": "APPROVE" | "REQUEST_CHANGES" | "COMMENT",
  "summary": "<one paragraph summary>",
  "vulnerabilities": [
    {
      "type": "<vulnerability class>",
      "severity": "CRITICAL" | "HIGH" | "MEDIUM" | "LOW",
      "file": "<path>",
      "line": <line number>,
      "description": "<what is wrong>",
      "recommendation": "<how to fix it>"
    }
  ],
  "issues": [
    {
      "type": "<issue class>",
      "severity": "CRITICAL" | "HIGH" | "MEDIUM" | "LOW",
      "file": "<path>",
      "line": <line number>,
      "description": "<what is wrong>",
      "recommendation": "<how to improve it>"
    }
  ],
  "recommendations": ["<general recommendation>"],
  "ai_confidence": <0.0-1.0>
}

Use REQUEST_CHANGES when you find critical or high severity problems,
COMMENT when there are only minor observations, and APPROVE only for
clean changes.
`
