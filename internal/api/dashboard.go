package api

import (
	"strconv"
	"time"

	"github.com/creatorpulse/creator-backend/internal/models"
	"github.com/creatorpulse/creator-backend/internal/services/auth"
	"github.com/creatorpulse/creator-backend/internal/services/dashboard"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultRangeDays = 28
	maxRangeDays     = 365
)

// DashboardHandler serves the creator dashboard sections.
type DashboardHandler struct {
	service *dashboard.Service
}

func NewDashboardHandler(service *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) RegisterRoutes(app *fiber.App, basePath string) {
	group := app.Group(basePath)
	group.Get("/:channelId/overview", h.Overview)
	group.Get("/:channelId/traffic-sources", h.TrafficSources)
	group.Get("/:channelId/geography", h.Geography)
	group.Get("/:channelId/audience", h.Audience)
	group.Get("/:channelId/videos/:videoId", h.VideoDetail)
	group.Get("/:channelId/videos/:videoId/comments", h.VideoComments)
	group.Get("/:channelId/search", h.Search)
}

// parseTimeRange reads the reporting window from query parameters: either
// explicit startDate/endDate (YYYY-MM-DD) or a trailing day count.
func parseTimeRange(c *fiber.Ctx) (models.TimeRange, error) {
	startStr := c.Query("startDate")
	endStr := c.Query("endDate")

	if startStr != "" || endStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return models.TimeRange{}, models.NewValidationError("invalid startDate, expected YYYY-MM-DD", err)
		}
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return models.TimeRange{}, models.NewValidationError("invalid endDate, expected YYYY-MM-DD", err)
		}
		if end.Before(start) {
			return models.TimeRange{}, models.NewValidationError("endDate precedes startDate", nil)
		}
		return models.TimeRange{Start: start, End: end}, nil
	}

	days, err := strconv.Atoi(c.Query("days", strconv.Itoa(defaultRangeDays)))
	if err != nil || days <= 0 || days > maxRangeDays {
		return models.TimeRange{}, models.NewValidationError("invalid days parameter", err)
	}
	return models.LastDays(days, time.Now().UTC()), nil
}

func requireUser(c *fiber.Ctx) (string, error) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return "", models.NewValidationError("missing authenticated user", nil)
	}
	return userID, nil
}

func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	accountID, err := requireUser(c)
	if err != nil {
		return renderError(c, err)
	}

	tr, err := parseTimeRange(c)
	if err != nil {
		return renderError(c, err)
	}

	result, err := h.service.Overview(c.UserContext(), accountID, c.Params("channelId"), tr)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(result)
}

func (h *DashboardHandler) TrafficSources(c *fiber.Ctx) error {
	accountID, err := requireUser(c)
	if err != nil {
		return renderError(c, err)
	}

	tr, err := parseTimeRange(c)
	if err != nil {
		return renderError(c, err)
	}

	result, err := h.service.TrafficSources(c.UserContext(), accountID, c.Params("channelId"), tr)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(result)
}

func (h *DashboardHandler) Geography(c *fiber.Ctx) error {
	accountID, err := requireUser(c)
	if err != nil {
		return renderError(c, err)
	}

	tr, err := parseTimeRange(c)
	if err != nil {
		return renderError(c, err)
	}

	result, err := h.service.Geography(c.UserContext(), accountID, c.Params("channelId"), tr)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(result)
}

func (h *DashboardHandler) Audience(c *fiber.Ctx) error {
	accountID, err := requireUser(c)
	if err != nil {
		return renderError(c, err)
	}

	tr, err := parseTimeRange(c)
	if err != nil {
		return renderError(c, err)
	}

	result, err := h.service.Audience(c.UserContext(), accountID, c.Params("channelId"), tr)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(result)
}

func (h *DashboardHandler) VideoDetail(c *fiber.Ctx) error {
	accountID, err := requireUser(c)
	if err != nil {
		return renderError(c, err)
	}

	tr, err := parseTimeRange(c)
	if err != nil {
		return renderError(c, err)
	}

	result, err := h.service.VideoDetail(c.UserContext(), accountID, c.Params("channelId"), c.Params("videoId"), tr)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(result)
}

func (h *DashboardHandler) VideoComments(c *fiber.Ctx) error {
	accountID, err := requireUser(c)
	if err != nil {
		return renderError(c, err)
	}

	result, err := h.service.RecentComments(c.UserContext(), accountID, c.Params("channelId"), c.Params("videoId"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(result)
}

func (h *DashboardHandler) Search(c *fiber.Ctx) error {
	accountID, err := requireUser(c)
	if err != nil {
		return renderError(c, err)
	}

	query := c.Query("q")
	if query == "" {
		return renderError(c, models.NewValidationError("q is required", nil))
	}

	result, err := h.service.SearchVideos(c.UserContext(), accountID, c.Params("channelId"), query)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(result)
}
