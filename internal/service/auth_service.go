package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/models"
	"github.com/sorties-app/sorties-api/internal/repository"
)

var (
	// ErrDuplicateEmail indicates a non-deleted user already holds the email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials indicates the email/password pair does not match
	// an account that is allowed to sign in.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidOrExpiredToken indicates no user holds a matching unexpired
	// reset token.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
)

const (
	defaultAvatarURL = "https://res.cloudinary.com/sorties/image/upload/avatars/default.png"
	resetTokenTTL    = time.Hour
)

// AuthService implements registration, credential checks and the password
// reset flow.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.UserResponse, error)
	IssueResetToken(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, payload dto.ResetPasswordRequest) error
}

type authService struct {
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, validator *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		validator: validator,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return dto.UserResponse{}, ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:         strings.TrimSpace(payload.Name),
		Email:        email,
		PasswordHash: string(hash),
		Avatar:       defaultAvatarURL,
		Role:         models.RoleMember,
		Status:       models.UserStatusActive,
		Hobbies:      dto.JSONFromStrings(nil),
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("user registered")
	return dto.NewUserResponse(user), nil
}

// Login rejects deleted and deactivated accounts with the same error as a
// wrong password, so the response does not reveal account state.
func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.FindByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrInvalidCredentials
		}
		return dto.UserResponse{}, err
	}

	if user.Status != models.UserStatusActive {
		return dto.UserResponse{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)) != nil {
		return dto.UserResponse{}, ErrInvalidCredentials
	}

	return dto.NewUserResponse(user), nil
}

// IssueResetToken returns an empty token without error when the email is
// unknown, so the endpoint cannot be used to probe for registered addresses.
func (s *authService) IssueResetToken(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	token := uuid.NewString()
	expiry := s.now().Add(resetTokenTTL)

	_, err = s.users.Update(ctx, user.ID, map[string]interface{}{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	})
	if err != nil {
		return "", err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("password reset token issued")
	return token, nil
}

func (s *authService) ResetPassword(ctx context.Context, payload dto.ResetPasswordRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	user, err := s.users.FindByResetToken(ctx, payload.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	if user.ResetTokenExpiry == nil || s.now().After(*user.ResetTokenExpiry) {
		return ErrInvalidOrExpiredToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// Single use: the token is cleared together with the new hash.
	_, err = s.users.Update(ctx, user.ID, map[string]interface{}{
		"password_hash":      string(hash),
		"reset_token":        nil,
		"reset_token_expiry": nil,
	})
	if err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("password reset completed")
	return nil
}
