package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/service"
	"github.com/sorties-app/sorties-api/internal/utils"
)

// AdminAuditHandler exposes the audit trail to administrators.
type AdminAuditHandler struct {
	audit  service.AuditService
	logger zerolog.Logger
}

// NewAdminAuditHandler constructs the handler.
func NewAdminAuditHandler(audit service.AuditService, logger zerolog.Logger) *AdminAuditHandler {
	return &AdminAuditHandler{
		audit:  audit,
		logger: logger.With().Str("component", "admin_audit_handler").Logger(),
	}
}

// Register wires the audit trail routes.
func (h *AdminAuditHandler) Register(router fiber.Router) {
	router.Get("", h.search)
}

func (h *AdminAuditHandler) search(c *fiber.Ctx) error {
	page, pageSize, err := pageDefaults(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.audit.Search(c.Context(), dto.AuditLogListRequest{
		Query:    c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to search audit trail")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to search audit trail")
	}

	return utils.SendSuccess(c, "audit entries retrieved", result)
}
