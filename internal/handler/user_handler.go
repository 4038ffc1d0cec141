package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/service"
	"github.com/sorties-app/sorties-api/internal/utils"
)

// UserHandler handles member directory reads and profile updates.
type UserHandler struct {
	users  service.UserService
	logger zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(users service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register wires the user routes.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/me", h.me)
	router.Patch("/me", h.updateProfile)
	router.Get("/:id", h.get)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := pageDefaults(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.UserListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Role:     c.Query("role"),
		Status:   c.Query("status"),
		Sort:     c.Query("sort"),
	}

	result, err := h.users.List(c.Context(), req, viewerFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list users")
	}

	return utils.SendSuccess(c, "users retrieved", result)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.users.Get(c.Context(), id, viewerFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load user")
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *UserHandler) me(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	user, err := h.users.Get(c.Context(), userID, viewerFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load profile")
	}

	return utils.SendSuccess(c, "profile retrieved", user)
}

func (h *UserHandler) updateProfile(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var patch dto.ProfilePatchRequest
	if err := c.BodyParser(&patch); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.UpdateProfile(c.Context(), userID, patch)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid profile payload")
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update profile")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update profile")
		}
	}

	return utils.SendSuccess(c, "profile updated", user)
}
