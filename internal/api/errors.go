package api

import (
	"github.com/creatorpulse/creator-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// renderError maps a classified error to its HTTP response. Fatal credential
// errors carry a reconnect marker so the frontend can route the owner back
// through OAuth consent.
func renderError(c *fiber.Ctx, err error) error {
	appErr := models.SanitizeError(err)

	payload := fiber.Map{
		"error":     appErr.Message,
		"type":      appErr.Type,
		"retryable": appErr.Retryable,
	}
	if appErr.Code != "" {
		payload["code"] = appErr.Code
	}
	if appErr.RequiresReconnect() {
		payload["reconnect_required"] = true
	}

	return c.Status(appErr.GetStatusCode()).JSON(payload)
}
