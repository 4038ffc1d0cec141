package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sorties-app/sorties-api/internal/dto"
)

// ErrInvalidRefreshToken indicates the refresh token failed verification.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// TokenClaims carries the identity encoded in an issued token.
type TokenClaims struct {
	UserID uint
	Name   string
	Role   string
}

// TokenService issues and verifies the JWT pair used by the API.
type TokenService interface {
	IssuePair(user dto.UserResponse) (dto.TokenPairResponse, error)
	ParseRefresh(token string) (TokenClaims, error)
}

type tokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenService constructs the JWT issuer.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) TokenService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &tokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (s *tokenService) IssuePair(user dto.UserResponse) (dto.TokenPairResponse, error) {
	access, err := s.sign(user, s.accessSecret, s.accessTTL)
	if err != nil {
		return dto.TokenPairResponse{}, err
	}

	refresh, err := s.sign(user, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return dto.TokenPairResponse{}, err
	}

	return dto.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		User:         user,
	}, nil
}

func (s *tokenService) ParseRefresh(token string) (TokenClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.refreshSecret, nil
	})
	if err != nil || !parsed.Valid {
		return TokenClaims{}, ErrInvalidRefreshToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrInvalidRefreshToken
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return TokenClaims{}, ErrInvalidRefreshToken
	}
	userID, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return TokenClaims{}, ErrInvalidRefreshToken
	}

	result := TokenClaims{UserID: uint(userID)}
	if name, ok := claims["name"].(string); ok {
		result.Name = name
	}
	if role, ok := claims["role"].(string); ok {
		result.Role = role
	}
	return result, nil
}

func (s *tokenService) sign(user dto.UserResponse, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"name": user.Name,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
