package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/models"
	"github.com/sorties-app/sorties-api/internal/repository"
)

var (
	// ErrForbiddenSelfAction indicates an admin targeted their own account.
	ErrForbiddenSelfAction = errors.New("admins cannot target their own account")
	// ErrAlreadyApproved indicates the activity left the pending state;
	// approved is terminal.
	ErrAlreadyApproved = errors.New("activity already approved")
	// ErrInvalidTransition indicates the requested status change is not a
	// legal move in the user lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ModerationService validates and applies privileged transitions. It is the
// sole producer of audit entries; rejected transitions never log.
type ModerationService interface {
	ApproveActivity(ctx context.Context, activityID uint, actor Actor) error
	DeleteActivity(ctx context.Context, activityID uint, actor Actor) error
	SetUserStatus(ctx context.Context, targetID uint, payload dto.AdminUserStatusRequest, actor Actor) (dto.UserResponse, error)
	DeleteUser(ctx context.Context, targetID uint, actor Actor) error
	RestoreUser(ctx context.Context, targetID uint, actor Actor) (dto.UserResponse, error)
	SetUserRole(ctx context.Context, targetID uint, payload dto.AdminUserRoleRequest, actor Actor) (dto.UserResponse, error)
}

type moderationService struct {
	users      repository.UserRepository
	activities repository.ActivityRepository
	audit      AuditRecorder
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewModerationService constructs the moderation workflow service.
func NewModerationService(users repository.UserRepository, activities repository.ActivityRepository, audit AuditRecorder, validator *validator.Validate, logger zerolog.Logger) ModerationService {
	return &moderationService{
		users:      users,
		activities: activities,
		audit:      audit,
		validator:  validator,
		logger:     logger.With().Str("component", "moderation_service").Logger(),
	}
}

func (s *moderationService) ApproveActivity(ctx context.Context, activityID uint, actor Actor) error {
	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActivityNotFound
		}
		return err
	}

	if activity.Status != models.ActivityStatusPending {
		return ErrAlreadyApproved
	}

	if err := s.activities.SetStatus(ctx, activityID, models.ActivityStatusPending, models.ActivityStatusApproved); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAlreadyApproved
		}
		return err
	}

	s.record(ctx, actor, models.AuditActionActivityApproved, activityID,
		fmt.Sprintf("approved activity %q", activity.Title))
	return nil
}

func (s *moderationService) DeleteActivity(ctx context.Context, activityID uint, actor Actor) error {
	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActivityNotFound
		}
		return err
	}

	if err := s.activities.Delete(ctx, activityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActivityNotFound
		}
		return err
	}

	s.record(ctx, actor, models.AuditActionActivityDeleted, activityID,
		fmt.Sprintf("deleted activity %q with %d comment(s)", activity.Title, len(activity.Comments)))
	return nil
}

// SetUserStatus toggles a user between active and inactive.
func (s *moderationService) SetUserStatus(ctx context.Context, targetID uint, payload dto.AdminUserStatusRequest, actor Actor) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}
	if targetID == actor.ID {
		return dto.UserResponse{}, ErrForbiddenSelfAction
	}

	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	// Deleted accounts only leave that state through an explicit restore.
	if target.IsDeleted() {
		return dto.UserResponse{}, ErrInvalidTransition
	}

	updated, err := s.users.Update(ctx, targetID, map[string]interface{}{"status": payload.Status})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.record(ctx, actor, models.AuditActionUserStatusSet, targetID,
		fmt.Sprintf("set status of %q from %s to %s", target.Name, target.Status, payload.Status))
	return dto.NewUserResponse(updated), nil
}

// DeleteUser soft-deletes: the record stays in storage and disappears from
// derived views through the visibility filter.
func (s *moderationService) DeleteUser(ctx context.Context, targetID uint, actor Actor) error {
	if targetID == actor.ID {
		return ErrForbiddenSelfAction
	}

	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if target.IsDeleted() {
		return ErrInvalidTransition
	}

	if _, err := s.users.Update(ctx, targetID, map[string]interface{}{"status": models.UserStatusDeleted}); err != nil {
		return err
	}

	s.record(ctx, actor, models.AuditActionUserDeleted, targetID,
		fmt.Sprintf("soft-deleted user %q (%s)", target.Name, target.Email))
	return nil
}

// RestoreUser moves a deleted account back to inactive, never straight to
// active: re-activation is a separate explicit step.
func (s *moderationService) RestoreUser(ctx context.Context, targetID uint, actor Actor) (dto.UserResponse, error) {
	if targetID == actor.ID {
		return dto.UserResponse{}, ErrForbiddenSelfAction
	}

	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if !target.IsDeleted() {
		return dto.UserResponse{}, ErrInvalidTransition
	}

	updated, err := s.users.Update(ctx, targetID, map[string]interface{}{"status": models.UserStatusInactive})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.record(ctx, actor, models.AuditActionUserRestored, targetID,
		fmt.Sprintf("restored user %q to inactive", target.Name))
	return dto.NewUserResponse(updated), nil
}

// SetUserRole switches a user between member and admin. Role changes are
// independent of status but never apply to the acting admin's own account.
func (s *moderationService) SetUserRole(ctx context.Context, targetID uint, payload dto.AdminUserRoleRequest, actor Actor) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}
	if targetID == actor.ID {
		return dto.UserResponse{}, ErrForbiddenSelfAction
	}

	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	if target.Role == payload.Role {
		return dto.NewUserResponse(target), nil
	}

	updated, err := s.users.Update(ctx, targetID, map[string]interface{}{"role": payload.Role})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.record(ctx, actor, models.AuditActionUserRoleChanged, targetID,
		fmt.Sprintf("changed role of %q from %s to %s", target.Name, target.Role, payload.Role))
	return dto.NewUserResponse(updated), nil
}

func (s *moderationService) getTarget(ctx context.Context, targetID uint) (models.User, error) {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return target, nil
}

// record appends the audit entry for a transition that already succeeded.
// Audit persistence errors are logged, not propagated: the state change has
// happened and must not be reported as failed.
func (s *moderationService) record(ctx context.Context, actor Actor, action string, targetID uint, details string) {
	if s.audit == nil {
		return
	}

	_, err := s.audit.Record(ctx, AuditEntry{
		AdminID:   actor.ID,
		AdminName: actor.Name,
		Action:    action,
		TargetID:  targetID,
		Details:   details,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("action", action).Uint("target_id", targetID).Msg("failed to append audit entry")
	}
}
