package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/models"
	"github.com/sorties-app/sorties-api/internal/repository"
)

type moderationFixture struct {
	db    *gorm.DB
	admin models.User
}

func newModerationFixture(t *testing.T) (ModerationService, *moderationFixture) {
	t.Helper()
	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	activities := repository.NewActivityRepository(db)
	audit := NewAuditService(repository.NewAuditLogRepository(db), testLogger())
	svc := NewModerationService(users, activities, audit, testValidator(), testLogger())
	admin := createUser(t, db, "Root Admin", "root@example.com", models.RoleAdmin, models.UserStatusActive)
	return svc, &moderationFixture{db: db, admin: admin}
}

func (f *moderationFixture) actor() Actor {
	return Actor{
		ID:        f.admin.ID,
		Name:      f.admin.Name,
		Role:      f.admin.Role,
		IPAddress: "10.0.0.1",
		UserAgent: "test-agent",
	}
}

func (f *moderationFixture) createPendingActivity(t *testing.T, title string) models.Activity {
	t.Helper()
	activity := models.Activity{
		Title:           title,
		Category:        "sports",
		OrganizerID:     f.admin.ID,
		OrganizerName:   f.admin.Name,
		MaxParticipants: 10,
		Status:          models.ActivityStatusPending,
	}
	require.NoError(t, f.db.Create(&activity).Error)
	return activity
}

func TestModerationApproveActivity(t *testing.T) {
	svc, fx := newModerationFixture(t)
	ctx := context.Background()

	activity := fx.createPendingActivity(t, "Sunday hike")

	require.NoError(t, svc.ApproveActivity(ctx, activity.ID, fx.actor()))
	require.Equal(t, int64(1), auditCount(t, fx.db))

	var stored models.Activity
	require.NoError(t, fx.db.First(&stored, activity.ID).Error)
	require.Equal(t, models.ActivityStatusApproved, stored.Status)

	// Approved is terminal; a second approval changes nothing and logs nothing.
	err := svc.ApproveActivity(ctx, activity.ID, fx.actor())
	require.ErrorIs(t, err, ErrAlreadyApproved)
	require.Equal(t, int64(1), auditCount(t, fx.db))

	err = svc.ApproveActivity(ctx, 9999, fx.actor())
	require.ErrorIs(t, err, ErrActivityNotFound)
	require.Equal(t, int64(1), auditCount(t, fx.db))
}

func TestModerationDeleteActivityCascades(t *testing.T) {
	svc, fx := newModerationFixture(t)
	ctx := context.Background()

	activity := fx.createPendingActivity(t, "Board games night")
	member := createUser(t, fx.db, "Mina", "mina@example.com", models.RoleMember, models.UserStatusActive)
	joinActivity(t, fx.db, activity.ID, member.ID)
	require.NoError(t, fx.db.Create(&models.Comment{
		ActivityID: activity.ID,
		AuthorID:   member.ID,
		AuthorName: member.Name,
		Text:       "Looking forward to it",
		Rating:     5,
	}).Error)

	require.NoError(t, svc.DeleteActivity(ctx, activity.ID, fx.actor()))
	require.Equal(t, int64(1), auditCount(t, fx.db))

	var activities, participants, comments int64
	require.NoError(t, fx.db.Model(&models.Activity{}).Count(&activities).Error)
	require.NoError(t, fx.db.Model(&models.ActivityParticipant{}).Count(&participants).Error)
	require.NoError(t, fx.db.Model(&models.Comment{}).Count(&comments).Error)
	require.Zero(t, activities)
	require.Zero(t, participants)
	require.Zero(t, comments)

	err := svc.DeleteActivity(ctx, activity.ID, fx.actor())
	require.ErrorIs(t, err, ErrActivityNotFound)
	require.Equal(t, int64(1), auditCount(t, fx.db))
}

func TestModerationSetUserStatus(t *testing.T) {
	svc, fx := newModerationFixture(t)
	ctx := context.Background()

	member := createUser(t, fx.db, "Paul", "paul@example.com", models.RoleMember, models.UserStatusActive)

	resp, err := svc.SetUserStatus(ctx, member.ID, dto.AdminUserStatusRequest{Status: models.UserStatusInactive}, fx.actor())
	require.NoError(t, err)
	require.Equal(t, models.UserStatusInactive, resp.Status)
	require.Equal(t, int64(1), auditCount(t, fx.db))

	resp, err = svc.SetUserStatus(ctx, member.ID, dto.AdminUserStatusRequest{Status: models.UserStatusActive}, fx.actor())
	require.NoError(t, err)
	require.Equal(t, models.UserStatusActive, resp.Status)
	require.Equal(t, int64(2), auditCount(t, fx.db))

	_, err = svc.SetUserStatus(ctx, member.ID, dto.AdminUserStatusRequest{Status: "banned"}, fx.actor())
	require.Error(t, err)
	require.Equal(t, int64(2), auditCount(t, fx.db))
}

func TestModerationStatusOfDeletedUserIsFrozen(t *testing.T) {
	svc, fx := newModerationFixture(t)
	ctx := context.Background()

	member := createUser(t, fx.db, "Paula", "paula@example.com", models.RoleMember, models.UserStatusDeleted)

	_, err := svc.SetUserStatus(ctx, member.ID, dto.AdminUserStatusRequest{Status: models.UserStatusActive}, fx.actor())
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Zero(t, auditCount(t, fx.db))
}

func TestModerationDeleteAndRestoreUser(t *testing.T) {
	svc, fx := newModerationFixture(t)
	ctx := context.Background()

	member := createUser(t, fx.db, "Nadia", "nadia@example.com", models.RoleMember, models.UserStatusActive)

	require.NoError(t, svc.DeleteUser(ctx, member.ID, fx.actor()))
	require.Equal(t, int64(1), auditCount(t, fx.db))

	var stored models.User
	require.NoError(t, fx.db.First(&stored, member.ID).Error)
	require.Equal(t, models.UserStatusDeleted, stored.Status)

	// Deleting twice is rejected and leaves the trail untouched.
	err := svc.DeleteUser(ctx, member.ID, fx.actor())
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, int64(1), auditCount(t, fx.db))

	// Restore lands on inactive, never straight back to active.
	resp, err := svc.RestoreUser(ctx, member.ID, fx.actor())
	require.NoError(t, err)
	require.Equal(t, models.UserStatusInactive, resp.Status)
	require.Equal(t, int64(2), auditCount(t, fx.db))

	_, err = svc.RestoreUser(ctx, member.ID, fx.actor())
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, int64(2), auditCount(t, fx.db))
}

func TestModerationSetUserRole(t *testing.T) {
	svc, fx := newModerationFixture(t)
	ctx := context.Background()

	member := createUser(t, fx.db, "Omar", "omar@example.com", models.RoleMember, models.UserStatusActive)

	resp, err := svc.SetUserRole(ctx, member.ID, dto.AdminUserRoleRequest{Role: models.RoleAdmin}, fx.actor())
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, resp.Role)
	require.Equal(t, int64(1), auditCount(t, fx.db))

	// Assigning the role a user already holds is a no-op without an entry.
	resp, err = svc.SetUserRole(ctx, member.ID, dto.AdminUserRoleRequest{Role: models.RoleAdmin}, fx.actor())
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, resp.Role)
	require.Equal(t, int64(1), auditCount(t, fx.db))
}

func TestModerationSelfTargetingIsForbidden(t *testing.T) {
	svc, fx := newModerationFixture(t)
	ctx := context.Background()
	actor := fx.actor()

	_, err := svc.SetUserRole(ctx, actor.ID, dto.AdminUserRoleRequest{Role: models.RoleMember}, actor)
	require.ErrorIs(t, err, ErrForbiddenSelfAction)

	_, err = svc.SetUserStatus(ctx, actor.ID, dto.AdminUserStatusRequest{Status: models.UserStatusInactive}, actor)
	require.ErrorIs(t, err, ErrForbiddenSelfAction)

	err = svc.DeleteUser(ctx, actor.ID, actor)
	require.ErrorIs(t, err, ErrForbiddenSelfAction)

	require.Zero(t, auditCount(t, fx.db))

	var stored models.User
	require.NoError(t, fx.db.First(&stored, actor.ID).Error)
	require.Equal(t, models.RoleAdmin, stored.Role)
	require.Equal(t, models.UserStatusActive, stored.Status)
}
