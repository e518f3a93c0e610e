package errors

import (
	"strings"
)

// ValidateUsername checks a candidate username typed by a user.
// Surrounding whitespace is ignored; only a blank value is rejected, the
// remote API decides whether the login exists.
func ValidateUsername(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidUsername, "username is required")
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
