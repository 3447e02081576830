package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxCodeLength bounds generated codes; anything longer would not fit a
// label at any sensible font size.
const maxCodeLength = 64

// ValidateCode validates a code string before it is used as a file name
// and QR payload.
//
// The validation rules are intentionally conservative:
//   - No empty codes
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 64 characters
func ValidateCode(code string) error {
	if code == "" {
		return New(ErrCodeInvalidCode, "code cannot be empty")
	}

	if len(code) > maxCodeLength {
		return New(ErrCodeInvalidCode, "code too long (max %d characters)", maxCodeLength).For(code)
	}

	for _, r := range code {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCode, "code contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(code, pattern) {
			return New(ErrCodeInvalidCode, "code contains invalid characters: %q", pattern).For(code)
		}
	}

	return nil
}

// prefixRegex matches prefixes that yield portable file names.
var prefixRegex = regexp.MustCompile(`^[A-Za-z0-9._-]*$`)

// ValidatePrefix validates the fixed prefix every code starts with.
// An empty prefix is allowed (codes are then plain zero-padded numbers).
func ValidatePrefix(prefix string) error {
	if len(prefix) > maxCodeLength/2 {
		return New(ErrCodeInvalidConfig, "prefix too long (max %d characters)", maxCodeLength/2)
	}
	if !prefixRegex.MatchString(prefix) {
		return New(ErrCodeInvalidConfig, "invalid prefix %q (allowed: letters, digits, '.', '_', '-')", prefix)
	}
	if strings.Contains(prefix, "..") {
		return New(ErrCodeInvalidConfig, "prefix cannot contain path traversal sequences (..)")
	}
	return nil
}
