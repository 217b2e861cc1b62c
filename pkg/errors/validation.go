package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// usernameRegex matches Lobsters-style usernames: alphanumeric with
// underscores and dashes, starting with a letter or digit.
var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateUsername validates a username used as a graph node key.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 64 characters
//   - Alphanumeric plus underscore/dash, starting alphanumeric
func ValidateUsername(name string) error {
	if name == "" {
		return New(ErrCodeInvalidUser, "username cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidUser, "username too long (max 64 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidUser, "username contains invalid control characters")
		}
	}

	if !usernameRegex.MatchString(name) {
		return New(ErrCodeInvalidUser, "invalid username: %q", name)
	}

	return nil
}

// ValidateSearchQuery validates a free-text search query before it is
// matched against usernames.
func ValidateSearchQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return New(ErrCodeInvalidInput, "search query cannot be empty")
	}

	if len(query) > 128 {
		return New(ErrCodeInvalidInput, "search query too long (max 128 characters)")
	}

	for _, r := range query {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "search query contains invalid characters")
		}
	}

	return nil
}

// ValidateDataPath validates a dataset file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateDataPath(path string) error {
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

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateMinKarma validates the minimum-karma filter value.
func ValidateMinKarma(minKarma int) error {
	if minKarma < 0 {
		return New(ErrCodeInvalidFilter, "minimum karma cannot be negative: %d", minKarma)
	}
	return nil
}

// ValidateZoom validates a camera zoom ratio.
func ValidateZoom(zoom float64) error {
	if zoom <= 0 {
		return New(ErrCodeInvalidZoom, "zoom must be positive: %v", zoom)
	}
	return nil
}
