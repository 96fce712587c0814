package errors

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// ValidateGraphPath validates a graph file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Extension must be one of the supported graph formats
func ValidateGraphPath(path string, extensions []string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(extensions, ext) {
		return New(ErrCodeInvalidFormat, "unsupported graph file %q (want one of %s)",
			filepath.Base(path), strings.Join(extensions, ", "))
	}
	return nil
}

// ValidateFormat checks that format is in the allowed set.
func ValidateFormat(format string, allowed []string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, format) {
		return New(ErrCodeInvalidFormat, "invalid format: %s (must be one of %s)",
			format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateRecordID validates an analysis record identifier taken from a URL.
// IDs are opaque but bounded and printable.
func ValidateRecordID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidID, "id too long (max 64 characters)")
	}
	for _, r := range id {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-') {
			return New(ErrCodeInvalidID, "id contains invalid characters")
		}
	}
	return nil
}
