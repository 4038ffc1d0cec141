package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sorties-app/sorties-api/internal/config"
	"github.com/sorties-app/sorties-api/internal/database"
	"github.com/sorties-app/sorties-api/internal/handler"
	"github.com/sorties-app/sorties-api/internal/middleware"
	"github.com/sorties-app/sorties-api/internal/models"
	"github.com/sorties-app/sorties-api/internal/repository"
	"github.com/sorties-app/sorties-api/internal/router"
	"github.com/sorties-app/sorties-api/internal/service"
	cloud "github.com/sorties-app/sorties-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Activity{},
		&models.ActivityParticipant{},
		&models.Comment{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	analyticsRepo := repository.NewAdminAnalyticsRepository(db)

	authService := service.NewAuthService(userRepo, validate, logger)
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userService := service.NewUserService(userRepo, validate, logger)
	activityService := service.NewActivityService(activityRepo, userRepo, validate, logger)
	auditService := service.NewAuditService(auditRepo, logger)
	moderationService := service.NewModerationService(userRepo, activityRepo, auditService, validate, logger)
	analyticsService := service.NewAdminAnalyticsService(analyticsRepo, redisClient, cfg.DashboardCacheTTL, logger)
	exportService := service.NewExportService(userRepo, activityRepo, logger)
	uploadService := service.NewUploadService(uploader, int(cfg.UploadMaxBytes/(1024*1024)), logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:           handler.NewAuthHandler(authService, tokenService, logger),
		UserHandler:           handler.NewUserHandler(userService, logger),
		ActivityHandler:       handler.NewActivityHandler(activityService, logger),
		UploadHandler:         handler.NewUploadHandler(uploadService, logger),
		AdminUserHandler:      handler.NewAdminUserHandler(userService, moderationService, logger),
		AdminActivityHandler:  handler.NewAdminActivityHandler(activityService, moderationService, logger),
		AdminAuditHandler:     handler.NewAdminAuditHandler(auditService, logger),
		AdminAnalyticsHandler: handler.NewAdminAnalyticsHandler(analyticsService, logger),
		AdminExportHandler:    handler.NewAdminExportHandler(exportService, logger),
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
