package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// outputFileNameRegex matches names accepted for the result file.
var outputFileNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateOutputFileName validates the base name of the result file.
// Only letters, digits and underscores are accepted; the extension is added
// by the writer.
func ValidateOutputFileName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidOutputName, "outputFileName is required")
	}
	if !outputFileNameRegex.MatchString(name) {
		return New(ErrCodeInvalidOutputName, "outputFileName must be alphanumeric with underscores: %s", name)
	}
	return nil
}

// ValidatePath validates a file path within a repository for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// gitRevisionRegex matches commit hashes, branch names and tags that are
// safe to hand to git as a single argument.
var gitRevisionRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/~^@{}-]*$`)

// ValidateGitRevision validates a git revision passed on the command line.
// Revisions starting with "-" are rejected so they cannot be read as flags.
func ValidateGitRevision(rev string) error {
	if rev == "" {
		return New(ErrCodeInvalidInput, "git revision cannot be empty")
	}
	if len(rev) > 256 {
		return New(ErrCodeInvalidInput, "git revision too long (max 256 characters)")
	}
	if !gitRevisionRegex.MatchString(rev) {
		return New(ErrCodeInvalidInput, "invalid git revision: %q", rev)
	}
	return nil
}
