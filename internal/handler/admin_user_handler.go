package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/service"
	"github.com/sorties-app/sorties-api/internal/utils"
)

// AdminUserHandler handles moderation actions on user accounts.
type AdminUserHandler struct {
	users      service.UserService
	moderation service.ModerationService
	logger     zerolog.Logger
}

// NewAdminUserHandler constructs the handler.
func NewAdminUserHandler(users service.UserService, moderation service.ModerationService, logger zerolog.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		users:      users,
		moderation: moderation,
		logger:     logger.With().Str("component", "admin_user_handler").Logger(),
	}
}

// Register wires the admin user routes.
func (h *AdminUserHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Patch("/:id/status", h.setStatus)
	router.Patch("/:id/role", h.setRole)
	router.Delete("/:id", h.remove)
	router.Post("/:id/restore", h.restore)
}

func (h *AdminUserHandler) list(c *fiber.Ctx) error {
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

func (h *AdminUserHandler) setStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var payload dto.AdminUserStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.moderation.SetUserStatus(c.Context(), id, payload, actorFromContext(c))
	if err != nil {
		return h.moderationError(c, err, "failed to update user status")
	}

	return utils.SendSuccess(c, "user status updated", user)
}

func (h *AdminUserHandler) setRole(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var payload dto.AdminUserRoleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.moderation.SetUserRole(c.Context(), id, payload, actorFromContext(c))
	if err != nil {
		return h.moderationError(c, err, "failed to update user role")
	}

	return utils.SendSuccess(c, "user role updated", user)
}

func (h *AdminUserHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.moderation.DeleteUser(c.Context(), id, actorFromContext(c)); err != nil {
		return h.moderationError(c, err, "failed to delete user")
	}

	return utils.SendSuccess(c, "user deleted", nil)
}

func (h *AdminUserHandler) restore(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.moderation.RestoreUser(c.Context(), id, actorFromContext(c))
	if err != nil {
		return h.moderationError(c, err, "failed to restore user")
	}

	return utils.SendSuccess(c, "user restored", user)
}

func (h *AdminUserHandler) moderationError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrForbiddenSelfAction):
		return utils.SendError(c, fiber.StatusForbidden, "cannot target own account")
	case errors.Is(err, service.ErrInvalidTransition):
		return utils.SendError(c, fiber.StatusConflict, "invalid status transition")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
