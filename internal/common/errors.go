package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors. Sentinels are matched with errors.Is across
// package boundaries; the server maps them to HTTP statuses.
var (
	// Input errors — not retried, 4xx-equivalent.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrCorruptDocument   = errors.New("corrupt document")
	ErrFileTooLarge      = errors.New("file too large")
	ErrInvalidInput      = errors.New("invalid input")

	// Provider errors. Unavailable is transient and escalation-eligible
	// within a chain; Rejected must not be retried on the same model.
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderRejected    = errors.New("provider rejected request")

	// Recognition stage errors.
	ErrRecognitionUnavailable = errors.New("recognition unavailable")
	ErrRecognitionExhausted   = errors.New("recognition chain exhausted")

	// Parse stage error: every chain entry failed validation or invocation.
	ErrExtractionFailed = errors.New("structured extraction failed")

	// Run-level errors.
	ErrTimeout      = errors.New("run deadline exceeded")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limit exceeded")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
