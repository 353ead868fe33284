package youtube

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/creatorpulse/creator-backend/internal/models"
)

// errBenignEmpty marks a known condition that is not an error from the
// caller's perspective (for example a video with its comment feed turned
// off). Execute maps it to a zero-value result.
var errBenignEmpty = errors.New("benign empty provider response")

// googleErrorBody is the structured error envelope Google-style APIs embed
// in non-2xx responses. The reason strings, not the status code, carry the
// classification signal.
type googleErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Domain  string `json:"domain"`
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

// Reason strings observed from the provider. The broad insufficient-access
// reason is distinguished from the per-report permission gap because the
// recovery paths differ: the former needs re-consent, the latter a reduced
// field set.
const (
	reasonInsufficientPermissions = "insufficientPermissions"
	reasonForbidden               = "forbidden"
	reasonQuotaExceeded           = "quotaExceeded"
	reasonRateLimitExceeded       = "rateLimitExceeded"
	reasonDailyLimitExceeded      = "dailyLimitExceeded"
	reasonUserRateLimitExceeded   = "userRateLimitExceeded"
	reasonCommentsDisabled        = "commentsDisabled"
)

// classifyResponse maps a non-2xx provider response to the error taxonomy.
// The structured reason codes are tried first; if the body does not parse,
// a best-effort textual match runs against the same signals. The provider's
// error contract is not fully reliable, so the textual path is a fallback,
// never the primary source.
func classifyResponse(status int, body []byte) error {
	var envelope googleErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error.Errors) > 0 {
		message := envelope.Error.Message
		if message == "" {
			message = envelope.Error.Errors[0].Message
		}

		for _, item := range envelope.Error.Errors {
			switch item.Reason {
			case reasonCommentsDisabled:
				return errBenignEmpty
			case reasonQuotaExceeded, reasonRateLimitExceeded, reasonDailyLimitExceeded, reasonUserRateLimitExceeded:
				return models.NewQuotaExceededError(message, nil)
			case reasonInsufficientPermissions:
				return models.NewScopeInsufficientError(message, nil)
			case reasonForbidden:
				return models.NewPermissionDeniedError(message, nil)
			}
		}

		return models.NewProviderError(
			fmt.Sprintf("provider returned status %d: %s", status, message), nil)
	}

	return classifyTextual(status, string(body))
}

// classifyTextual is the fallback detection path for bodies that fail the
// structured parse.
func classifyTextual(status int, body string) error {
	lower := strings.ToLower(body)

	switch {
	case strings.Contains(lower, "commentsdisabled") || strings.Contains(lower, "disabled comments"):
		return errBenignEmpty
	case strings.Contains(lower, "quota") || strings.Contains(lower, "rate limit"):
		return models.NewQuotaExceededError(fmt.Sprintf("provider returned status %d", status), nil)
	case strings.Contains(lower, "insufficient") && strings.Contains(lower, "permission"):
		return models.NewScopeInsufficientError(fmt.Sprintf("provider returned status %d", status), nil)
	case strings.Contains(lower, "forbidden"):
		return models.NewPermissionDeniedError(fmt.Sprintf("provider returned status %d", status), nil)
	}

	return models.NewProviderError(fmt.Sprintf("provider returned unexpected status %d", status), nil)
}
