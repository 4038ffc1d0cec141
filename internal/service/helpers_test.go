package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sorties-app/sorties-api/internal/models"
	"github.com/sorties-app/sorties-api/internal/repository"
)

var testDBCounter atomic.Int64

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Activity{},
		&models.ActivityParticipant{},
		&models.Comment{},
		&models.AuditLog{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name, email, role, status string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, Role: role, Status: status}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func auditCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	return count
}

func joinActivity(t *testing.T, db *gorm.DB, activityID, userID uint) {
	t.Helper()
	require.NoError(t, repository.NewActivityRepository(db).Join(context.Background(), activityID, userID))
}
