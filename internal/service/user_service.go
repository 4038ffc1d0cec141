package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/repository"
)

// ErrUserNotFound indicates the user does not exist or is not visible to the
// viewer.
var ErrUserNotFound = errors.New("user not found")

// UserService exposes member directory reads and profile updates.
type UserService interface {
	Get(ctx context.Context, id uint, viewer Viewer) (dto.UserResponse, error)
	List(ctx context.Context, req dto.UserListRequest, viewer Viewer) (dto.UserListResponse, error)
	UpdateProfile(ctx context.Context, userID uint, patch dto.ProfilePatchRequest) (dto.UserResponse, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(repo repository.UserRepository, validator *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Get(ctx context.Context, id uint, viewer Viewer) (dto.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if user.IsDeleted() && !viewer.CanSeeDeleted() {
		return dto.UserResponse{}, ErrUserNotFound
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, req dto.UserListRequest, viewer Viewer) (dto.UserListResponse, error) {
	filter := repository.UserFilter{
		Search:         strings.TrimSpace(req.Search),
		Role:           strings.TrimSpace(req.Role),
		Status:         strings.TrimSpace(req.Status),
		Sort:           req.Sort,
		Page:           req.Page,
		PageSize:       req.PageSize,
		IncludeDeleted: viewer.CanSeeDeleted(),
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range VisibleUsers(users, viewer) {
		responses = append(responses, dto.NewUserResponse(user))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.UserListResponse{Items: responses, Pagination: pagination}, nil
}

// UpdateProfile merges only the mutable profile fields. Identity, email,
// role and status never pass through this path.
func (s *userService) UpdateProfile(ctx context.Context, userID uint, patch dto.ProfilePatchRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(patch); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	if user.IsDeleted() {
		return dto.UserResponse{}, ErrUserNotFound
	}

	updates := make(map[string]interface{})
	if patch.Name != nil {
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*patch.Avatar)
	}
	if patch.Phone != nil {
		updates["phone"] = strings.TrimSpace(*patch.Phone)
	}
	if patch.Gender != nil {
		updates["gender"] = strings.TrimSpace(*patch.Gender)
	}
	if patch.Hobbies != nil {
		updates["hobbies"] = dto.JSONFromStrings(patch.Hobbies)
	}
	if patch.Socials != nil {
		updates["socials"] = dto.JSONMapFromStrings(patch.Socials)
	}

	if len(updates) == 0 {
		return dto.NewUserResponse(user), nil
	}

	updated, err := s.repo.Update(ctx, userID, updates)
	if err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(updated), nil
}
