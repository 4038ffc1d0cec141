package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sorties-app/sorties-api/internal/service"
	"github.com/sorties-app/sorties-api/internal/utils"
)

// AdminExportHandler serves the CSV exports.
type AdminExportHandler struct {
	exports service.ExportService
	logger  zerolog.Logger
}

// NewAdminExportHandler constructs the handler.
func NewAdminExportHandler(exports service.ExportService, logger zerolog.Logger) *AdminExportHandler {
	return &AdminExportHandler{
		exports: exports,
		logger:  logger.With().Str("component", "admin_export_handler").Logger(),
	}
}

// Register wires the export routes.
func (h *AdminExportHandler) Register(router fiber.Router) {
	router.Get("/users", h.users)
	router.Get("/activities", h.activities)
}

func (h *AdminExportHandler) users(c *fiber.Ctx) error {
	data, err := h.exports.ExportUsers(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to export users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export users")
	}

	return sendCSV(c, service.UsersExportFilename, data)
}

func (h *AdminExportHandler) activities(c *fiber.Ctx) error {
	data, err := h.exports.ExportActivities(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to export activities")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export activities")
	}

	return sendCSV(c, service.ActivitiesExportFilename, data)
}

func sendCSV(c *fiber.Ctx, filename string, data []byte) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}
