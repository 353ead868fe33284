package api

import (
	"github.com/creatorpulse/creator-backend/internal/services/telemetry"

	"github.com/gofiber/fiber/v2"
)

// TelemetryHandler exposes the in-process usage ledger for operators.
type TelemetryHandler struct {
	ledger *telemetry.Ledger
}

func NewTelemetryHandler(ledger *telemetry.Ledger) *TelemetryHandler {
	return &TelemetryHandler{ledger: ledger}
}

func (h *TelemetryHandler) RegisterRoutes(app *fiber.App, basePath string) {
	group := app.Group(basePath)
	group.Get("/", h.Snapshot)
	group.Post("/reset", h.Reset)
}

// Snapshot returns a point-in-time copy of the usage counters.
func (h *TelemetryHandler) Snapshot(c *fiber.Ctx) error {
	return c.JSON(h.ledger.Snapshot())
}

// Reset clears the counters, the recent-call ring and the sticky quota flag.
func (h *TelemetryHandler) Reset(c *fiber.Ctx) error {
	h.ledger.Reset()
	return c.JSON(fiber.Map{"reset": true})
}
