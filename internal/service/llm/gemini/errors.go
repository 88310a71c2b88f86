package gemini

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingAPIKey indicates the client was built without a credential.
	ErrMissingAPIKey = errors.New("gemini api key is not configured")

	// ErrNoGenerateContentModel indicates model discovery found nothing that supports generateContent.
	ErrNoGenerateContentModel = errors.New("no model supporting generateContent was found via ListModels")
)

// APIError is a non-success response from the Gemini API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// modelErrorPatterns mark responses caused by an unknown or unsupported model name.
var modelErrorPatterns = []string{
	"not found",
	"not supported for generateContent",
	"Call ListModels",
}

// IsModelError reports whether err says the requested model cannot serve generateContent.
func IsModelError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, pattern := range modelErrorPatterns {
		if strings.Contains(apiErr.Message, pattern) {
			return true
		}
	}
	return false
}

func newAPIError(status int, statusText, message, fallbackPrefix string) *APIError {
	if message == "" {
		message = fmt.Sprintf("%s: %d %s", fallbackPrefix, status, statusText)
	}
	return &APIError{StatusCode: status, Message: message}
}
