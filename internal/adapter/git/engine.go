// Package git reads changed files out of a local repository so reviews can
// run without a GitHub pull request.
package git

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	formatdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/bkyoung/pr-reviewer/internal/domain"
)

// Engine reads diffs from a local repository, backed by go-git.
type Engine struct {
	repoDir string
}

// NewEngine constructs an engine for the provided repository directory.
func NewEngine(repoDir string) *Engine {
	return &Engine{repoDir: repoDir}
}

// ListChangedFiles computes the changed files between two refs, in the same
// shape the GitHub files endpoint produces.
func (e *Engine) ListChangedFiles(ctx context.Context, baseRef, targetRef string) ([]domain.ChangedFile, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	baseCommit, err := resolveCommit(repo, baseRef)
	if err != nil {
		return nil, fmt.Errorf("resolve base ref: %w", err)
	}

	targetCommit, err := resolveCommit(repo, targetRef)
	if err != nil {
		return nil, fmt.Errorf("resolve target ref: %w", err)
	}

	patch, err := baseCommit.PatchContext(ctx, targetCommit)
	if err != nil {
		return nil, fmt.Errorf("compute patch: %w", err)
	}

	files := make([]domain.ChangedFile, 0, len(patch.FilePatches()))
	for _, fp := range patch.FilePatches() {
		path, status := pathAndStatus(fp)
		if path == "" {
			continue
		}

		patchText := ""
		if !fp.IsBinary() {
			patchText, err = encodeFilePatch(fp)
			if err != nil {
				return nil, fmt.Errorf("encode patch for %s: %w", path, err)
			}
		}

		additions, deletions := countChanges(fp)
		files = append(files, domain.ChangedFile{
			Filename:  path,
			Status:    status,
			Additions: additions,
			Deletions: deletions,
			Changes:   additions + deletions,
			Patch:     patchText,
			FileType:  domain.FileTypeForName(path),
		})
	}

	return files, nil
}

// CurrentBranch returns the name of the checked-out branch.
func (e *Engine) CurrentBranch(ctx context.Context) (string, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	name := head.Name()
	if name.IsBranch() {
		return name.Short(), nil
	}
	return "", fmt.Errorf("detached HEAD")
}

func resolveCommit(repo *goGit.Repository, ref string) (*object.Commit, error) {
	candidates := []string{
		ref,
		fmt.Sprintf("refs/heads/%s", ref),
		fmt.Sprintf("refs/remotes/origin/%s", ref),
	}

	var lastErr error
	for _, candidate := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(candidate))
		if err != nil {
			lastErr = err
			continue
		}
		return repo.CommitObject(*hash)
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unable to resolve ref %s", ref)
}

// pathAndStatus maps a file patch onto the path and status vocabulary the
// rest of the system uses.
func pathAndStatus(fp formatdiff.FilePatch) (path, status string) {
	from, to := fp.Files()

	switch {
	case from == nil && to != nil:
		return to.Path(), domain.FileStatusAdded
	case from != nil && to == nil:
		return from.Path(), domain.FileStatusRemoved
	case from != nil && to != nil:
		if from.Path() != to.Path() {
			return to.Path(), domain.FileStatusRenamed
		}
		return to.Path(), domain.FileStatusModified
	default:
		return "", domain.FileStatusModified
	}
}

// countChanges tallies added and deleted lines across the patch chunks.
func countChanges(fp formatdiff.FilePatch) (additions, deletions int) {
	for _, chunk := range fp.Chunks() {
		lines := strings.Count(chunk.Content(), "\n")
		if len(chunk.Content()) > 0 && !strings.HasSuffix(chunk.Content(), "\n") {
			lines++
		}
		switch chunk.Type() {
		case formatdiff.Add:
			additions += lines
		case formatdiff.Delete:
			deletions += lines
		}
	}
	return additions, deletions
}

func encodeFilePatch(fp formatdiff.FilePatch) (string, error) {
	var buf bytes.Buffer
	encoder := formatdiff.NewUnifiedEncoder(&buf, formatdiff.DefaultContextLines)
	if err := encoder.Encode(singlePatch{fp: fp}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type singlePatch struct {
	fp formatdiff.FilePatch
}

func (s singlePatch) FilePatches() []formatdiff.FilePatch {
	return []formatdiff.FilePatch{s.fp}
}

func (s singlePatch) Message() string {
	return ""
}
