package youtube

import (
	"errors"
	"net/http"
	"testing"

	"github.com/creatorpulse/creator-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   models.ErrorType
		benign bool
	}{
		{
			name:   "structured insufficientPermissions",
			status: http.StatusForbidden,
			body:   `{"error":{"code":403,"message":"scopes","errors":[{"reason":"insufficientPermissions"}]}}`,
			want:   models.ErrorTypeScopeInsufficient,
		},
		{
			name:   "structured forbidden on report fields",
			status: http.StatusForbidden,
			body:   `{"error":{"code":403,"message":"report","errors":[{"reason":"forbidden"}]}}`,
			want:   models.ErrorTypePermissionDenied,
		},
		{
			name:   "structured quotaExceeded",
			status: http.StatusForbidden,
			body:   `{"error":{"code":403,"message":"quota","errors":[{"reason":"quotaExceeded"}]}}`,
			want:   models.ErrorTypeQuotaExceeded,
		},
		{
			name:   "structured rateLimitExceeded",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"code":429,"message":"slow down","errors":[{"reason":"rateLimitExceeded"}]}}`,
			want:   models.ErrorTypeQuotaExceeded,
		},
		{
			name:   "structured commentsDisabled is benign",
			status: http.StatusForbidden,
			body:   `{"error":{"code":403,"message":"disabled","errors":[{"reason":"commentsDisabled"}]}}`,
			benign: true,
		},
		{
			name:   "unknown structured reason",
			status: http.StatusConflict,
			body:   `{"error":{"code":409,"message":"odd","errors":[{"reason":"somethingNew"}]}}`,
			want:   models.ErrorTypeProvider,
		},
		{
			name:   "textual fallback quota",
			status: http.StatusForbidden,
			body:   `daily quota exhausted`,
			want:   models.ErrorTypeQuotaExceeded,
		},
		{
			name:   "textual fallback insufficient permission",
			status: http.StatusForbidden,
			body:   `caller has insufficient permission for this resource`,
			want:   models.ErrorTypeScopeInsufficient,
		},
		{
			name:   "textual fallback forbidden",
			status: http.StatusForbidden,
			body:   `Forbidden`,
			want:   models.ErrorTypePermissionDenied,
		},
		{
			name:   "garbage body",
			status: http.StatusInternalServerError,
			body:   `<html>oops</html>`,
			want:   models.ErrorTypeProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyResponse(tt.status, []byte(tt.body))
			if tt.benign {
				assert.True(t, errors.Is(err, errBenignEmpty))
				return
			}
			assert.Equal(t, tt.want, models.ErrorKind(err))
		})
	}
}
