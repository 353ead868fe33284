package auth

import (
	"github.com/gofiber/fiber/v2"
)

const userIDLocal = "auth_user_id"

// SetUserID stores the authenticated user on the request context. Called by
// the auth middleware after token verification.
func SetUserID(c *fiber.Ctx, userID string) {
	c.Locals(userIDLocal, userID)
}

// GetUserID returns the authenticated user for the request, if any.
func GetUserID(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals(userIDLocal).(string)
	return userID, ok && userID != ""
}
