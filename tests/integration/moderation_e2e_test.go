package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sorties-app/sorties-api/internal/config"
	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/handler"
	"github.com/sorties-app/sorties-api/internal/middleware"
	"github.com/sorties-app/sorties-api/internal/models"
	"github.com/sorties-app/sorties-api/internal/repository"
	"github.com/sorties-app/sorties-api/internal/router"
	"github.com/sorties-app/sorties-api/internal/service"
)

// The stub auth middleware grants admin on /api/admin routes and reads the
// member identity from the X-Test-User header everywhere else.
func stubAuth(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), "/api/admin") {
		c.Locals("user_id", uint(9001))
		c.Locals("user_role", "admin")
		c.Locals("user_name", "Moderator")
		return c.Next()
	}

	userID := uint(1)
	if raw := c.Get("X-Test-User"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err == nil {
			userID = uint(parsed)
		}
	}
	c.Locals("user_id", userID)
	c.Locals("user_role", "member")
	return c.Next()
}

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:moderation_e2e?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Activity{},
		&models.ActivityParticipant{},
		&models.Comment{},
		&models.AuditLog{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	analyticsRepo := repository.NewAdminAnalyticsRepository(db)

	userService := service.NewUserService(userRepo, validate, logger)
	activityService := service.NewActivityService(activityRepo, userRepo, validate, logger)
	auditService := service.NewAuditService(auditRepo, logger)
	moderationService := service.NewModerationService(userRepo, activityRepo, auditService, validate, logger)
	analyticsService := service.NewAdminAnalyticsService(analyticsRepo, nil, 0, logger)
	exportService := service.NewExportService(userRepo, activityRepo, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		UserHandler:           handler.NewUserHandler(userService, logger),
		ActivityHandler:       handler.NewActivityHandler(activityService, logger),
		AdminUserHandler:      handler.NewAdminUserHandler(userService, moderationService, logger),
		AdminActivityHandler:  handler.NewAdminActivityHandler(activityService, moderationService, logger),
		AdminAuditHandler:     handler.NewAdminAuditHandler(auditService, logger),
		AdminAnalyticsHandler: handler.NewAdminAnalyticsHandler(analyticsService, logger),
		AdminExportHandler:    handler.NewAdminExportHandler(exportService, logger),
		JWTMiddleware:         stubAuth,
	})

	return app, db
}

func decode[T any](t *testing.T, resp *http.Response, target *T) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target))
}

func jsonRequest(t *testing.T, method, path string, payload interface{}, userID uint) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID > 0 {
		req.Header.Set("X-Test-User", strconv.Itoa(int(userID)))
	}
	return req
}

func TestModerationEndToEndFlow(t *testing.T) {
	app, db := setupApp(t)

	organizer := models.User{Name: "Olive", Email: "olive@example.com", Role: models.RoleMember, Status: models.UserStatusActive}
	require.NoError(t, db.Create(&organizer).Error)
	participant := models.User{Name: "Pierre", Email: "pierre@example.com", Role: models.RoleMember, Status: models.UserStatusActive}
	require.NoError(t, db.Create(&participant).Error)
	admin := models.User{Name: "Moderator", Email: "mod@example.com", Role: models.RoleAdmin, Status: models.UserStatusActive}
	require.NoError(t, db.Create(&admin).Error)

	// Step 1: a member proposes an activity; it lands in pending.
	createPayload := dto.ActivityCreateRequest{
		Title:           "Street food tour",
		Location:        "Marseille",
		Category:        "food",
		Date:            time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		Images:          []string{"https://cdn.example.com/tour.jpg"},
		MaxParticipants: 6,
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/activities", createPayload, organizer.ID))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.ActivityResponse `json:"data"`
	}
	decode(t, resp, &created)
	require.Equal(t, models.ActivityStatusPending, created.Data.Status)
	activityID := strconv.Itoa(int(created.Data.ID))

	// Step 2: pending activities are invisible to members.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/v1/activities/"+activityID, nil, participant.ID))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Step 3: the admin approves it.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/admin/activities/"+activityID+"/approve", nil, 0))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Approval is terminal.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/admin/activities/"+activityID+"/approve", nil, 0))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Step 4: another member joins and reviews it.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/activities/"+activityID+"/join", nil, participant.ID))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/activities/"+activityID+"/comments",
		dto.CommentCreateRequest{Text: "Fantastic evening", Rating: 5}, participant.ID))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/v1/activities/"+activityID, nil, organizer.ID))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var detail struct {
		Data dto.ActivityResponse `json:"data"`
	}
	decode(t, resp, &detail)
	require.Len(t, detail.Data.Participants, 1)
	require.Len(t, detail.Data.Comments, 1)

	// Step 5: the admin soft-deletes the participant; the roster and the
	// comment disappear from the member view.
	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/api/admin/users/"+strconv.Itoa(int(participant.ID)), nil, 0))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/v1/activities/"+activityID, nil, organizer.ID))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decode(t, resp, &detail)
	require.Empty(t, detail.Data.Participants)
	require.Empty(t, detail.Data.Comments)

	// Step 6: the audit trail recorded the approval and the deletion.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/admin/audit-logs", nil, 0))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var trail struct {
		Data dto.AuditLogListResponse `json:"data"`
	}
	decode(t, resp, &trail)
	require.Len(t, trail.Data.Items, 2)
	require.Equal(t, models.AuditActionUserDeleted, trail.Data.Items[0].Action)

	// Step 7: the dashboard and exports reflect the final state.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/admin/analytics/dashboard", nil, 0))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var dashboard struct {
		Data dto.AdminDashboardResponse `json:"data"`
	}
	decode(t, resp, &dashboard)
	require.Equal(t, int64(2), dashboard.Data.TotalUsers)
	require.Equal(t, int64(1), dashboard.Data.ApprovedActivities)
	require.Equal(t, int64(1), dashboard.Data.TotalComments)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/admin/exports/users", nil, 0))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	require.Contains(t, string(body), "pierre@example.com")
}
