package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels matched with errors.Is by callers that classify failures
var (
	// ErrInvalidInput is matched by every ValidationError
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrTimeout      = errors.New("operation timed out")
	// ErrNetworkFailure is matched by every NetworkError
	ErrNetworkFailure = errors.New("network failure")
	// ErrInvalidConfiguration is matched by every ConfigurationError
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrUnauthorized is matched by HTTP 401/403 errors and credential rejections
	ErrUnauthorized = errors.New("unauthorized")
)

// WrapError prefixes err with message; nil stays nil
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf is WrapError with a formatted prefix
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// ValidationError reports a rejected input value
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigurationError points at the config section and field that cannot be used
type ConfigurationError struct {
	Section string
	Field   string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Section != "" && e.Field != "":
		return fmt.Sprintf("configuration error in section '%s', field '%s': %s", e.Section, e.Field, e.Reason)
	case e.Section != "":
		return fmt.Sprintf("configuration error in section '%s': %s", e.Section, e.Reason)
	default:
		return "configuration error: " + e.Reason
	}
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

func NewConfigurationError(section, field, reason string) *ConfigurationError {
	return &ConfigurationError{Section: section, Field: field, Reason: reason}
}

// NetworkError is a transport failure talking to URL
type NetworkError struct {
	URL     string
	Reason  string
	Wrapped error
}

func (e *NetworkError) Error() string {
	if e.Wrapped == nil {
		return fmt.Sprintf("network error for '%s': %s", e.URL, e.Reason)
	}
	return fmt.Sprintf("network error for '%s': %s: %v", e.URL, e.Reason, e.Wrapped)
}

func (e *NetworkError) Unwrap() error {
	return e.Wrapped
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetworkFailure
}

func NewNetworkError(url, reason string, wrapped error) *NetworkError {
	return &NetworkError{URL: url, Reason: reason, Wrapped: wrapped}
}

// HTTPError is a non-2xx answer from URL; Message holds a body snippet
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d error for '%s': %s", e.StatusCode, e.URL, e.Message)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

func NewHTTPErrorWithURL(statusCode int, message, url string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message, URL: url}
}

// ErrorCollector accumulates errors and joins them on demand
type ErrorCollector struct {
	errors []error
}

// AddWithContext records err prefixed with context; nil is ignored
func (ec *ErrorCollector) AddWithContext(err error, context string) {
	if err != nil {
		ec.errors = append(ec.errors, WrapError(err, context))
	}
}

// Error returns nil, the single collected error, or all of them joined
func (ec *ErrorCollector) Error() error {
	if len(ec.errors) == 1 {
		return ec.errors[0]
	}
	return errors.Join(ec.errors...)
}
