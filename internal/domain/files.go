package domain

import (
	"path"
	"strings"
)

// GitHub file statuses as reported by the pull-request files API.
const (
	FileStatusAdded    = "added"
	FileStatusModified = "modified"
	FileStatusRemoved  = "removed"
	FileStatusRenamed  = "renamed"
)

// ChangedFile is one per-file diff record for a pull request.
type ChangedFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	Patch     string `json:"patch"`
	FileType  string `json:"file_type"`
}

// PullRequest carries the metadata needed to review and report on a PR.
type PullRequest struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	URL        string `json:"html_url"`
	Repository string `json:"repository"`
}

// fileTypeByExtension maps well-known extensions to a language tag.
var fileTypeByExtension = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".rb":    "ruby",
	".rs":    "rust",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".cs":    "csharp",
	".php":   "php",
	".swift": "swift",
	".kt":    "kotlin",
	".sh":    "shell",
	".sql":   "sql",
	".html":  "html",
	".css":   "css",
	".yaml":  "yaml",
	".yml":   "yaml",
	".json":  "json",
	".md":    "markdown",
	".tf":    "terraform",
}

// FileTypeForName derives a language tag from a filename extension.
// Unknown extensions return "text".
func FileTypeForName(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if fileType, ok := fileTypeByExtension[ext]; ok {
		return fileType
	}
	return "text"
}

// ChangedFileFromPayload extracts a ChangedFile from a loose key/value
// record, as accepted by the direct review endpoint. Missing file_type is
// derived from the filename.
func ChangedFileFromPayload(entry map[string]any) ChangedFile {
	filename := stringField(entry, "filename", "")
	fileType := stringField(entry, "file_type", "")
	if fileType == "" {
		fileType = FileTypeForName(filename)
	}
	return ChangedFile{
		Filename:  filename,
		Status:    stringField(entry, "status", FileStatusModified),
		Additions: intField(entry, "additions", 0),
		Deletions: intField(entry, "deletions", 0),
		Changes:   intField(entry, "changes", 0),
		Patch:     stringField(entry, "patch", ""),
		FileType:  fileType,
	}
}
