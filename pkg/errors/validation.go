package errors

import (
	"strings"
	"unicode"
)

// maxImageRefLength bounds image references accepted from storyboards.
const maxImageRefLength = 4096

// ValidateImageRef validates an image reference taken from a storyboard.
// A reference is either an http(s) URL, a data URI, or a file path.
//
// File paths are checked conservatively because storyboards can arrive over
// HTTP:
//   - No empty references
//   - No control characters or null bytes
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
//
// Absolute paths are allowed only when allowAbsolute is true (CLI use).
func ValidateImageRef(ref string, allowAbsolute bool) error {
	if ref == "" {
		return New(ErrCodeInvalidPanel, "image reference cannot be empty")
	}
	if strings.HasPrefix(ref, "data:") {
		return nil
	}
	if len(ref) > maxImageRefLength {
		return New(ErrCodeInvalidPanel, "image reference too long (max %d characters)", maxImageRefLength)
	}

	for _, r := range ref {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPanel, "image reference contains invalid characters")
		}
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return nil
	}

	if !allowAbsolute && strings.HasPrefix(ref, "/") {
		return New(ErrCodeInvalidPanel, "image path must be relative (cannot start with /)")
	}
	if strings.Contains(ref, "..") {
		return New(ErrCodeInvalidPanel, "image path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(ref, "\\") {
		return New(ErrCodeInvalidPanel, "image path cannot contain backslashes")
	}

	return nil
}

// ValidateOutputFormat checks that format is one of the supported formats.
func ValidateOutputFormat(format string, supported ...string) error {
	for _, s := range supported {
		if format == s {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(supported, ", "))
}
