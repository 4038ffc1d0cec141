package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/service"
	"github.com/sorties-app/sorties-api/internal/utils"
)

// AdminActivityHandler handles activity moderation.
type AdminActivityHandler struct {
	activities service.ActivityService
	moderation service.ModerationService
	logger     zerolog.Logger
}

// NewAdminActivityHandler constructs the handler.
func NewAdminActivityHandler(activities service.ActivityService, moderation service.ModerationService, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		activities: activities,
		moderation: moderation,
		logger:     logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

// Register wires the admin activity routes.
func (h *AdminActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/:id/approve", h.approve)
	router.Delete("/:id", h.remove)
}

func (h *AdminActivityHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := pageDefaults(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.ActivityListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Sort:     c.Query("sort"),
	}

	result, err := h.activities.List(c.Context(), req, viewerFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activities")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activities")
	}

	return utils.SendSuccess(c, "activities retrieved", result)
}

func (h *AdminActivityHandler) approve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	if err := h.moderation.ApproveActivity(c.Context(), id, actorFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrActivityNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		case errors.Is(err, service.ErrAlreadyApproved):
			return utils.SendError(c, fiber.StatusConflict, "activity already approved")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to approve activity")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to approve activity")
		}
	}

	return utils.SendSuccess(c, "activity approved", nil)
}

func (h *AdminActivityHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	if err := h.moderation.DeleteActivity(c.Context(), id, actorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete activity")
	}

	return utils.SendSuccess(c, "activity deleted", nil)
}
