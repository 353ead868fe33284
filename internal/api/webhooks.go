package api

import (
	"encoding/json"
	"errors"

	"github.com/creatorpulse/creator-backend/internal/services/cache"
	"github.com/creatorpulse/creator-backend/internal/services/credentials"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	svix "github.com/svix/svix-webhooks/go"
)

// AccountWebhookHandler processes account-lifecycle events from the identity
// platform. The disconnect event is the only code path that destroys a
// credential record.
type AccountWebhookHandler struct {
	signingSecret string
	store         *credentials.Store
	reportCache   *cache.ReportCache
}

func NewAccountWebhookHandler(signingSecret string, store *credentials.Store, reportCache *cache.ReportCache) *AccountWebhookHandler {
	return &AccountWebhookHandler{
		signingSecret: signingSecret,
		store:         store,
		reportCache:   reportCache,
	}
}

type accountWebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type accountEventData struct {
	AccountID string `json:"account_id"`
	UserID    string `json:"user_id"`
}

func (h *AccountWebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	payload := c.Body()

	headers := make(map[string][]string)
	c.Request().Header.VisitAll(func(key, value []byte) {
		headers[string(key)] = []string{string(value)}
	})

	wh, err := svix.NewWebhook(h.signingSecret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to initialize webhook verifier",
		})
	}

	if err := wh.Verify(payload, headers); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid webhook signature",
		})
	}

	var event accountWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid JSON payload",
		})
	}

	switch event.Type {
	case "account.disconnected", "user.deleted":
		if err := h.handleDisconnect(c, event.Data); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to process disconnect event",
			})
		}
	default:
		fiberlog.Debugf("ignoring webhook event type %s", event.Type)
	}

	return c.JSON(fiber.Map{"received": true})
}

func (h *AccountWebhookHandler) handleDisconnect(c *fiber.Ctx, data json.RawMessage) error {
	var event accountEventData
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}

	accountID := event.AccountID
	if accountID == "" {
		accountID = event.UserID
	}

	err := h.store.Unlink(c.Context(), accountID)
	if errors.Is(err, credentials.ErrNotFound) {
		// Already unlinked; the event is idempotent.
		return nil
	}
	if err != nil {
		return err
	}

	h.reportCache.Invalidate(c.Context(), accountID)
	fiberlog.Infof("unlinked credential for account %s after disconnect event", accountID)
	return nil
}
