package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/service"
	"github.com/sorties-app/sorties-api/internal/utils"
)

// AuthHandler handles registration, login and the password reset flow.
type AuthHandler struct {
	auth   service.AuthService
	tokens service.TokenService
	logger zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(auth service.AuthService, tokens service.TokenService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		tokens: tokens,
		logger: logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires the auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Post("/refresh", h.refresh)
	router.Post("/forgot-password", h.forgotPassword)
	router.Post("/reset-password", h.resetPassword)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.auth.Register(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid registration payload")
		case errors.Is(err, service.ErrDuplicateEmail):
			return utils.SendError(c, fiber.StatusConflict, "email already registered")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to register user")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to register user")
		}
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to issue token pair")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to issue tokens")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", pair)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.auth.Login(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid login payload")
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to authenticate user")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to authenticate")
		}
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to issue token pair")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to issue tokens")
	}

	return utils.SendSuccess(c, "login successful", pair)
}

func (h *AuthHandler) refresh(c *fiber.Ctx) error {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&payload); err != nil || strings.TrimSpace(payload.RefreshToken) == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "refresh token required")
	}

	claims, err := h.tokens.ParseRefresh(payload.RefreshToken)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid refresh token")
	}

	pair, err := h.tokens.IssuePair(dto.UserResponse{ID: claims.UserID, Name: claims.Name, Role: claims.Role})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to issue token pair")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to issue tokens")
	}

	return utils.SendSuccess(c, "tokens refreshed", pair)
}

func (h *AuthHandler) forgotPassword(c *fiber.Ctx) error {
	var payload dto.ForgotPasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	// The response is identical whether or not the address exists.
	if _, err := h.auth.IssueResetToken(c.Context(), payload.Email); err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid email")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to issue reset token")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to process request")
	}

	return utils.SendSuccess(c, "if the address exists, a reset link has been sent", nil)
}

func (h *AuthHandler) resetPassword(c *fiber.Ctx) error {
	var payload dto.ResetPasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.auth.ResetPassword(c.Context(), payload); err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid reset payload")
		case errors.Is(err, service.ErrInvalidOrExpiredToken):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid or expired reset token")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to reset password")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to reset password")
		}
	}

	return utils.SendSuccess(c, "password updated", nil)
}
