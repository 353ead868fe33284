package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation represents validation errors (4xx)
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeAuthentication represents authentication errors (401)
	ErrorTypeAuthentication ErrorType = "authentication"
	// ErrorTypeCredentialRevoked means the stored refresh token was rejected
	// by the provider; the account must be reconnected by its owner
	ErrorTypeCredentialRevoked ErrorType = "credential_revoked"
	// ErrorTypeScopeInsufficient means the granted OAuth scopes do not cover
	// the requested capability at all; same recovery as a revoked credential
	ErrorTypeScopeInsufficient ErrorType = "scope_insufficient"
	// ErrorTypePermissionDenied means the specific requested report fields
	// need a permission the grant lacks, but the credential itself is fine.
	// Recoverable by retrying with a reduced field set.
	ErrorTypePermissionDenied ErrorType = "analytics_permission_denied"
	// ErrorTypeQuotaExceeded represents provider quota/rate ceilings (429/403)
	ErrorTypeQuotaExceeded ErrorType = "quota_exceeded"
	// ErrorTypeRateLimit represents our own rate limiting errors (429)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeProvider represents unclassified provider errors (502/503)
	ErrorTypeProvider ErrorType = "provider"
	// ErrorTypeTimeout represents timeout errors (504)
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeInternal represents internal server errors (500)
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeCircuitBreaker represents circuit breaker errors (503)
	ErrorTypeCircuitBreaker ErrorType = "circuit_breaker"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Code       string    `json:"code,omitzero"`
	StatusCode int       `json:"-"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error is retryable
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// GetStatusCode returns the HTTP status code for the error
func (e *AppError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeCredentialRevoked, ErrorTypeScopeInsufficient, ErrorTypePermissionDenied:
		return http.StatusForbidden
	case ErrorTypeQuotaExceeded, ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeProvider, ErrorTypeCircuitBreaker:
		return http.StatusBadGateway
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// RequiresReconnect reports whether the error is fatal for the connected
// account until its owner re-links it. These errors are never retried.
func (e *AppError) RequiresReconnect() bool {
	return e.Type == ErrorTypeCredentialRevoked || e.Type == ErrorTypeScopeInsufficient
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Retryable:  false,
		Cause:      cause,
	}
}

// NewCredentialRevokedError creates an error for a refresh token the provider
// no longer accepts
func NewCredentialRevokedError(accountID string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeCredentialRevoked,
		Message:    fmt.Sprintf("credential for account %s was revoked; the account must be reconnected", accountID),
		Code:       "CREDENTIAL_REVOKED",
		StatusCode: http.StatusForbidden,
		Retryable:  false,
		Cause:      cause,
	}
}

// NewScopeInsufficientError creates an error for a grant missing the scopes
// the call needs entirely
func NewScopeInsufficientError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeScopeInsufficient,
		Message:    message,
		Code:       "SCOPE_INSUFFICIENT",
		StatusCode: http.StatusForbidden,
		Retryable:  false,
		Cause:      cause,
	}
}

// NewPermissionDeniedError creates an error for report fields that need a
// permission the grant lacks; callers should retry with a reduced field set
func NewPermissionDeniedError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypePermissionDenied,
		Message:    message,
		Code:       "ANALYTICS_PERMISSION_DENIED",
		StatusCode: http.StatusForbidden,
		Retryable:  false,
		Cause:      cause,
	}
}

// NewQuotaExceededError creates an error for a provider quota ceiling
func NewQuotaExceededError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeQuotaExceeded,
		Message:    message,
		Code:       "QUOTA_EXCEEDED",
		StatusCode: http.StatusTooManyRequests,
		Retryable:  true,
		Cause:      cause,
	}
}

// NewProviderError creates an unclassified provider error
func NewProviderError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeProvider,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Retryable:  true,
		Cause:      cause,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(operation string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    fmt.Sprintf("operation %s timed out", operation),
		StatusCode: http.StatusGatewayTimeout,
		Retryable:  true,
		Cause:      cause,
	}
}

// NewCircuitBreakerError creates a circuit breaker error
func NewCircuitBreakerError(service string) *AppError {
	return &AppError{
		Type:       ErrorTypeCircuitBreaker,
		Message:    fmt.Sprintf("service %s is currently unavailable (circuit breaker open)", service),
		Code:       "CIRCUIT_BREAKER_OPEN",
		StatusCode: http.StatusServiceUnavailable,
		Retryable:  true,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError() *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Message:    "rate limit exceeded",
		Code:       "RATE_LIMIT_EXCEEDED",
		StatusCode: http.StatusTooManyRequests,
		Retryable:  true,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Retryable:  false,
		Cause:      cause,
	}
}

// ErrorKind extracts the classified type from err, or ErrorTypeInternal when
// the error was never classified. Downstream layers branch on this value
// only, never on message contents.
func ErrorKind(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsErrorType reports whether err carries the given classified type.
func IsErrorType(err error, t ErrorType) bool {
	return ErrorKind(err) == t
}

// SanitizeError sanitizes an error for external consumption
func SanitizeError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:       appErr.Type,
			Message:    appErr.Message,
			Code:       appErr.Code,
			StatusCode: appErr.GetStatusCode(),
			Retryable:  appErr.Retryable,
		}
	}

	return NewInternalError("an unexpected error occurred", err)
}
