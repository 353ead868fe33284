package api

import (
	"errors"
	"time"

	"github.com/creatorpulse/creator-backend/internal/models"
	"github.com/creatorpulse/creator-backend/internal/services/credentials"

	"github.com/gofiber/fiber/v2"
)

// AccountsHandler manages the authenticated user's provider connection.
// Linking stores the refresh token minted by the OAuth consent flow; there is
// deliberately no unlink endpoint, disconnection arrives via webhook only.
type AccountsHandler struct {
	store *credentials.Store
}

func NewAccountsHandler(store *credentials.Store) *AccountsHandler {
	return &AccountsHandler{store: store}
}

func (h *AccountsHandler) RegisterRoutes(app *fiber.App, basePath string) {
	group := app.Group(basePath)
	group.Post("/link", h.Link)
	group.Get("/status", h.Status)
}

type linkRequest struct {
	RefreshToken  string `json:"refresh_token"`
	AccessToken   string `json:"access_token,omitzero"`
	ExpiresIn     int    `json:"expires_in,omitzero"`
	GrantedScopes string `json:"granted_scopes,omitzero"`
}

func (h *AccountsHandler) Link(c *fiber.Ctx) error {
	accountID, err := requireUser(c)
	if err != nil {
		return renderError(c, err)
	}

	var req linkRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, models.NewValidationError("invalid request body", err))
	}
	if req.RefreshToken == "" {
		return renderError(c, models.NewValidationError("refresh_token is required", nil))
	}

	record := &models.CredentialRecord{
		AccountID:    accountID,
		RefreshToken: req.RefreshToken,
	}
	if req.AccessToken != "" && req.ExpiresIn > 0 {
		expiry := time.Now().Add(time.Duration(req.ExpiresIn) * time.Second)
		record.AccessToken = &req.AccessToken
		record.TokenExpiry = &expiry
	}
	if req.GrantedScopes != "" {
		record.GrantedScopes = &req.GrantedScopes
	}

	if err := h.store.Link(c.Context(), record); err != nil {
		return renderError(c, models.NewInternalError("failed to link account", err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"linked": true})
}

func (h *AccountsHandler) Status(c *fiber.Ctx) error {
	accountID, err := requireUser(c)
	if err != nil {
		return renderError(c, err)
	}

	record, err := h.store.Get(c.Context(), accountID)
	if errors.Is(err, credentials.ErrNotFound) {
		return c.JSON(fiber.Map{"linked": false})
	}
	if err != nil {
		return renderError(c, models.NewInternalError("failed to load account status", err))
	}

	payload := fiber.Map{
		"linked":          true,
		"has_fresh_token": record.HasValidAccessToken(time.Now(), time.Minute),
	}
	if record.GrantedScopes != nil {
		payload["granted_scopes"] = *record.GrantedScopes
	}
	return c.JSON(payload)
}
