package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/models"
	"github.com/sorties-app/sorties-api/internal/repository"
)

func newAuthService(t *testing.T) (AuthService, *authService, repository.UserRepository) {
	t.Helper()
	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	svc := NewAuthService(users, testValidator(), testLogger())
	impl, ok := svc.(*authService)
	require.True(t, ok)
	return svc, impl, users
}

func TestAuthServiceRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthService(t)

	first, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Alice Martin",
		Email:    "Alice@Example.com",
		Password: "motdepasse1",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", first.Email)
	require.Equal(t, models.RoleMember, first.Role)
	require.Equal(t, models.UserStatusActive, first.Status)
	require.NotEmpty(t, first.Avatar)

	_, err = svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Autre Alice",
		Email:    "alice@example.com",
		Password: "motdepasse2",
	})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestAuthServiceDeletedUserDoesNotBlockEmailReuse(t *testing.T) {
	svc, impl, users := newAuthService(t)

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Premier",
		Email:    "x@y.com",
		Password: "motdepasse1",
	})
	require.NoError(t, err)

	_, err = users.Update(context.Background(), registered.ID, map[string]interface{}{"status": models.UserStatusDeleted})
	require.NoError(t, err)

	second, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Second",
		Email:    "x@y.com",
		Password: "motdepasse2",
	})
	require.NoError(t, err)
	require.NotEqual(t, registered.ID, second.ID)

	// The second account now holds the address, so a third registration conflicts.
	_, err = impl.Register(context.Background(), dto.RegisterRequest{
		Name:     "Troisième",
		Email:    "x@y.com",
		Password: "motdepasse3",
	})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestAuthServiceLoginChecksStatusAndPassword(t *testing.T) {
	svc, _, users := newAuthService(t)

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Alice Martin",
		Email:    "alice@example.com",
		Password: "motdepasse1",
	})
	require.NoError(t, err)

	logged, err := svc.Login(context.Background(), dto.LoginRequest{Email: "alice@example.com", Password: "motdepasse1"})
	require.NoError(t, err)
	require.Equal(t, registered.ID, logged.ID)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "alice@example.com", Password: "mauvais"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "inconnue@example.com", Password: "motdepasse1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Update(context.Background(), registered.ID, map[string]interface{}{"status": models.UserStatusInactive})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "alice@example.com", Password: "motdepasse1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceResetTokenFlow(t *testing.T) {
	svc, impl, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Alice Martin",
		Email:    "alice@example.com",
		Password: "motdepasse1",
	})
	require.NoError(t, err)

	// Unknown addresses are indistinguishable from known ones.
	token, err := svc.IssueResetToken(context.Background(), "inconnue@example.com")
	require.NoError(t, err)
	require.Empty(t, token)

	token, err = svc.IssueResetToken(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	err = svc.ResetPassword(context.Background(), dto.ResetPasswordRequest{Token: "faux-token", Password: "nouveaumdp1"})
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	require.NoError(t, svc.ResetPassword(context.Background(), dto.ResetPasswordRequest{Token: token, Password: "nouveaumdp1"}))

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "alice@example.com", Password: "nouveaumdp1"})
	require.NoError(t, err)

	// Single use: a second consumption of the same token fails.
	err = svc.ResetPassword(context.Background(), dto.ResetPasswordRequest{Token: token, Password: "encoreunautre1"})
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	// Expired tokens are rejected even when they still match.
	token, err = svc.IssueResetToken(context.Background(), "alice@example.com")
	require.NoError(t, err)
	impl.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	err = svc.ResetPassword(context.Background(), dto.ResetPasswordRequest{Token: token, Password: "tropvieux123"})
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}
