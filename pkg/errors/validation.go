package errors

import (
	"strings"
	"unicode"
)

// maxCategoryLength bounds the certificate category interpolated into the
// generator prompt.
const maxCategoryLength = 100

// ValidateCategory validates a certificate category supplied by a user.
// It rejects values that would make the generator prompt misbehave.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only categories
//   - No control characters (newlines included)
//   - Maximum length of 100 characters
func ValidateCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return New(ErrCodeInvalidInput, "category cannot be empty")
	}

	if len(category) > maxCategoryLength {
		return New(ErrCodeInvalidInput, "category too long (max %d characters)", maxCategoryLength)
	}

	for _, r := range category {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "category contains invalid control characters")
		}
	}

	return nil
}

// ValidateOutputFilename validates a file name written into an output directory.
// It ensures the name is a simple basename without path components.
func ValidateOutputFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "output filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidInput, "output filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidInput, "output filename cannot be a hidden file")
	}

	if strings.ContainsRune(filename, '\x00') {
		return New(ErrCodeInvalidInput, "output filename contains invalid characters")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
