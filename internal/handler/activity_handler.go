package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/service"
	"github.com/sorties-app/sorties-api/internal/utils"
)

// ActivityHandler handles member-facing activity endpoints.
type ActivityHandler struct {
	activities service.ActivityService
	logger     zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(activities service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activities: activities,
		logger:     logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires the activity routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Post("/:id/join", h.join)
	router.Delete("/:id/join", h.leave)
	router.Post("/:id/comments", h.addComment)
}

func (h *ActivityHandler) create(c *fiber.Ctx) error {
	organizerID := userIDFromContext(c)
	if organizerID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.ActivityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	activity, err := h.activities.Create(c.Context(), organizerID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid activity payload")
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusUnauthorized, "organizer account not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create activity")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create activity")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity submitted for review", activity)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
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

func (h *ActivityHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	activity, err := h.activities.Get(c.Context(), id, viewerFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load activity")
	}

	return utils.SendSuccess(c, "activity retrieved", activity)
}

func (h *ActivityHandler) join(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	if err := h.activities.Join(c.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrActivityNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		case errors.Is(err, service.ErrAlreadyJoined):
			return utils.SendError(c, fiber.StatusConflict, "already joined")
		case errors.Is(err, service.ErrActivityFull):
			return utils.SendError(c, fiber.StatusConflict, "activity is full")
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusUnauthorized, "account not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to join activity")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to join activity")
		}
	}

	return utils.SendSuccess(c, "joined activity", nil)
}

func (h *ActivityHandler) leave(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	if err := h.activities.Leave(c.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrActivityNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		case errors.Is(err, service.ErrNotAParticipant):
			return utils.SendError(c, fiber.StatusConflict, "not a participant")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to leave activity")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to leave activity")
		}
	}

	return utils.SendSuccess(c, "left activity", nil)
}

func (h *ActivityHandler) addComment(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	var payload dto.CommentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	comment, err := h.activities.AddComment(c.Context(), id, userID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid comment payload")
		case errors.Is(err, service.ErrActivityNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		case errors.Is(err, service.ErrNotAParticipant):
			return utils.SendError(c, fiber.StatusForbidden, "only participants can comment")
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusUnauthorized, "account not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to add comment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to add comment")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment added", comment)
}
