package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sorties-app/sorties-api/internal/service"
	"github.com/sorties-app/sorties-api/internal/utils"
)

// AdminAnalyticsHandler exposes the aggregated dashboard.
type AdminAnalyticsHandler struct {
	analytics service.AdminAnalyticsService
	logger    zerolog.Logger
}

// NewAdminAnalyticsHandler constructs the handler.
func NewAdminAnalyticsHandler(analytics service.AdminAnalyticsService, logger zerolog.Logger) *AdminAnalyticsHandler {
	return &AdminAnalyticsHandler{
		analytics: analytics,
		logger:    logger.With().Str("component", "admin_analytics_handler").Logger(),
	}
}

// Register wires the dashboard route.
func (h *AdminAnalyticsHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
}

func (h *AdminAnalyticsHandler) dashboard(c *fiber.Ctx) error {
	result, err := h.analytics.GetDashboard(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build dashboard")
	}

	if result.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}

	return utils.SendSuccess(c, "dashboard retrieved", result)
}
