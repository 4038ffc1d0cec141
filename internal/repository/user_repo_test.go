package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sorties-app/sorties-api/internal/models"
)

var testDBCounter atomic.Int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
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

func TestUserRepositoryFindByEmailIgnoresDeleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	deleted := models.User{Name: "Ancien", Email: "x@y.com", Role: models.RoleMember, Status: models.UserStatusDeleted}
	require.NoError(t, db.Create(&deleted).Error)

	_, err := repo.FindByEmail(context.Background(), "x@y.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	active := models.User{Name: "Nouveau", Email: "X@Y.com", Role: models.RoleMember, Status: models.UserStatusActive}
	require.NoError(t, db.Create(&active).Error)

	found, err := repo.FindByEmail(context.Background(), "x@y.COM")
	require.NoError(t, err)
	require.Equal(t, active.ID, found.ID)
}

func TestUserRepositoryListFiltersDeletedByDefault(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	older := models.User{Name: "Alice Martin", Email: "alice@example.com", Role: models.RoleMember, Status: models.UserStatusActive, CreatedAt: time.Now().Add(-2 * time.Hour)}
	gone := models.User{Name: "Bruno Leroy", Email: "bruno@example.com", Role: models.RoleMember, Status: models.UserStatusDeleted, CreatedAt: time.Now().Add(-1 * time.Hour)}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&gone).Error)

	users, total, err := repo.List(context.Background(), UserFilter{PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	require.Equal(t, "Alice Martin", users[0].Name)

	users, total, err = repo.List(context.Background(), UserFilter{PageSize: 10, IncludeDeleted: true})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, users, 2)

	users, _, err = repo.List(context.Background(), UserFilter{Search: "alice", PageSize: 10})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "Alice Martin", users[0].Name)
}
