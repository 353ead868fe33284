package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindUnwrapsThroughWrapping(t *testing.T) {
	base := NewCredentialRevokedError("acct-1", nil)
	wrapped := fmt.Errorf("loading dashboard: %w", base)

	assert.Equal(t, ErrorTypeCredentialRevoked, ErrorKind(wrapped))
	assert.True(t, IsErrorType(wrapped, ErrorTypeCredentialRevoked))
}

func TestErrorKindUnclassified(t *testing.T) {
	assert.Equal(t, ErrorTypeInternal, ErrorKind(errors.New("plain")))
}

func TestRequiresReconnect(t *testing.T) {
	assert.True(t, NewCredentialRevokedError("a", nil).RequiresReconnect())
	assert.True(t, NewScopeInsufficientError("m", nil).RequiresReconnect())
	assert.False(t, NewPermissionDeniedError("m", nil).RequiresReconnect())
	assert.False(t, NewQuotaExceededError("m", nil).RequiresReconnect())
}

func TestGetStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, NewPermissionDeniedError("m", nil).GetStatusCode())
	assert.Equal(t, http.StatusTooManyRequests, NewQuotaExceededError("m", nil).GetStatusCode())
	assert.Equal(t, http.StatusGatewayTimeout, NewTimeoutError("op", nil).GetStatusCode())
	assert.Equal(t, http.StatusServiceUnavailable, NewCircuitBreakerError("youtube").GetStatusCode())
}

func TestSanitizeErrorStripsCause(t *testing.T) {
	cause := errors.New("refresh_token=rt-secret rejected")
	sanitized := SanitizeError(NewCredentialRevokedError("acct-1", cause))

	assert.Nil(t, sanitized.Cause)
	assert.NotContains(t, sanitized.Message, "rt-secret")
	assert.Equal(t, ErrorTypeCredentialRevoked, sanitized.Type)
}
