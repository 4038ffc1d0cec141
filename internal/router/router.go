package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sorties-app/sorties-api/internal/config"
	"github.com/sorties-app/sorties-api/internal/handler"
	"github.com/sorties-app/sorties-api/internal/middleware"
	"github.com/sorties-app/sorties-api/internal/models"
	"github.com/sorties-app/sorties-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler           *handler.AuthHandler
	UserHandler           *handler.UserHandler
	ActivityHandler       *handler.ActivityHandler
	UploadHandler         *handler.UploadHandler
	AdminUserHandler      *handler.AdminUserHandler
	AdminActivityHandler  *handler.AdminActivityHandler
	AdminAuditHandler     *handler.AdminAuditHandler
	AdminAnalyticsHandler *handler.AdminAnalyticsHandler
	AdminExportHandler    *handler.AdminExportHandler
	JWTMiddleware         fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 10, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware)
		deps.UserHandler.Register(users)
	}

	if deps.ActivityHandler != nil {
		activities := api.Group("/activities", jwtMiddleware)
		deps.ActivityHandler.Register(activities)
	}

	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads", jwtMiddleware, middleware.RateLimit("uploads", 20, time.Minute))
		deps.UploadHandler.Register(uploads)
	}

	admin := app.Group("/api/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))

	if deps.AdminUserHandler != nil {
		deps.AdminUserHandler.Register(admin.Group("/users"))
	}
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(admin.Group("/activities"))
	}
	if deps.AdminAuditHandler != nil {
		deps.AdminAuditHandler.Register(admin.Group("/audit-logs"))
	}
	if deps.AdminAnalyticsHandler != nil {
		deps.AdminAnalyticsHandler.Register(admin.Group("/analytics"))
	}
	if deps.AdminExportHandler != nil {
		deps.AdminExportHandler.Register(admin.Group("/exports"))
	}
}
