package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sorties-app/sorties-api/internal/models"
)

// AdminAnalyticsRepository supplies the raw counts and timestamps behind the
// admin dashboard aggregation.
type AdminAnalyticsRepository interface {
	CountUsers(ctx context.Context, status string) (int64, error)
	CountActivities(ctx context.Context, status string) (int64, error)
	CountComments(ctx context.Context) (int64, error)
	AverageRating(ctx context.Context) (float64, error)
	ListUserRegistrations(ctx context.Context) ([]time.Time, error)
	ListActivityCreations(ctx context.Context) ([]time.Time, error)
}

type adminAnalyticsRepository struct {
	db *gorm.DB
}

// NewAdminAnalyticsRepository constructs the analytics repository.
func NewAdminAnalyticsRepository(db *gorm.DB) AdminAnalyticsRepository {
	return &adminAnalyticsRepository{db: db}
}

// CountUsers counts non-deleted users, optionally narrowed to one status.
func (r *adminAnalyticsRepository) CountUsers(ctx context.Context, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).
		Where("status <> ?", models.UserStatusDeleted)
	if status != "" {
		query = r.db.WithContext(ctx).Model(&models.User{}).Where("status = ?", status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *adminAnalyticsRepository) CountActivities(ctx context.Context, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *adminAnalyticsRepository) CountComments(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *adminAnalyticsRepository) AverageRating(ctx context.Context) (float64, error) {
	var average *float64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("AVG(rating)").
		Scan(&average).Error
	if err != nil {
		return 0, err
	}
	if average == nil {
		return 0, nil
	}
	return *average, nil
}

func (r *adminAnalyticsRepository) ListUserRegistrations(ctx context.Context) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("status <> ?", models.UserStatusDeleted).
		Order("created_at ASC").
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *adminAnalyticsRepository) ListActivityCreations(ctx context.Context) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).Model(&models.Activity{}).
		Order("created_at ASC").
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}
