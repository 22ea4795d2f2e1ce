package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error types
var (
	ErrTransport      = errors.New("transport error")
	ErrAuthentication = errors.New("authentication error")
	ErrResolution     = errors.New("reference resolution error")
	ErrConfiguration  = errors.New("configuration error")
	ErrHTTPRequest    = errors.New("HTTP request error")
)

// WrapError wraps an error with a standard error type
func WrapError(err error, errType error, message string) error {
	return fmt.Errorf("%w: %s: %w", errType, message, err)
}

// Is provides a convenience wrapper around errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// APIError is returned whenever a must-succeed Admin API call comes back
// with a status outside [200,300).
type APIError struct {
	Status  int
	Method  string
	Path    string
	Snippet string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("shopware API returned error %d for %s %s", e.Status, strings.ToUpper(e.Method), e.Path)
	if e.Snippet != "" {
		msg += ": " + e.Snippet
	}
	return msg
}

// Snippet trims text and bounds it to max runes, marking the cut with an
// ellipsis. Response bodies can be huge; error messages should not be.
func Snippet(text string, max int) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return ""
	}

	runes := []rune(t)
	if len(runes) <= max {
		return t
	}

	return string(runes[:max]) + "…"
}
