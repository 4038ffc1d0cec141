package handler_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sorties-app/sorties-api/internal/handler"
)

type mockExportService struct {
	users      []byte
	activities []byte
	err        error
}

func (m *mockExportService) ExportUsers(_ context.Context) ([]byte, error) {
	return m.users, m.err
}

func (m *mockExportService) ExportActivities(_ context.Context) ([]byte, error) {
	return m.activities, m.err
}

func TestAdminExportHandler_UsersDownload(t *testing.T) {
	document := append([]byte{0xEF, 0xBB, 0xBF}, []byte("id,name\n1,Alice\n")...)
	svc := &mockExportService{users: document}

	app := fiber.New()
	handler.NewAdminExportHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/admin/exports"))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/exports/users", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "text/csv; charset=utf-8", resp.Header.Get(fiber.HeaderContentType))
	require.Equal(t, `attachment; filename="export_utilisateurs.csv"`, resp.Header.Get(fiber.HeaderContentDisposition))

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	require.Equal(t, document, body)
}

func TestAdminExportHandler_ActivitiesDownload(t *testing.T) {
	svc := &mockExportService{activities: []byte{0xEF, 0xBB, 0xBF}}

	app := fiber.New()
	handler.NewAdminExportHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/admin/exports"))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/exports/activities", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, `attachment; filename="export_activites.csv"`, resp.Header.Get(fiber.HeaderContentDisposition))
}
