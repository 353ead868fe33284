package middleware

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/creatorpulse/creator-backend/internal/services/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	userID string
}

func (v stubVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	if token != "good-token" {
		return "", errors.New("unknown token")
	}
	return v.userID, nil
}

// testApp mirrors the server wiring: the welcome route is registered before
// the auth middleware, everything after it is guarded.
func testApp() *fiber.App {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	mw := NewAuthMiddleware(stubVerifier{userID: "user-1"}, nil)
	app.Use(mw.RequireAuth())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/v1/protected", func(c *fiber.Ctx) error {
		userID, _ := auth.GetUserID(c)
		return c.SendString(userID)
	})
	return app
}

func TestRequireAuthLeavesPublicPathsOpen(t *testing.T) {
	app := testApp()

	for _, path := range []string{"/", "/health"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}

func TestRequireAuthRejectsMissingOrBadToken(t *testing.T) {
	app := testApp()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/v1/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodGet, "/v1/protected", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuthResolvesUser(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest(fiber.MethodGet, "/v1/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "user-1", string(body))
}
