package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/models"
	"github.com/sorties-app/sorties-api/internal/repository"
)

// AdminAnalyticsService aggregates the metrics behind the admin dashboard.
type AdminAnalyticsService interface {
	GetDashboard(ctx context.Context) (dto.AdminDashboardResponse, error)
}

type adminAnalyticsService struct {
	repo     repository.AdminAnalyticsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAdminAnalyticsService constructs the analytics service.
func NewAdminAnalyticsService(repo repository.AdminAnalyticsRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AdminAnalyticsService {
	return &adminAnalyticsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "admin_analytics_service").Logger(),
		now:      time.Now,
	}
}

func (s *adminAnalyticsService) GetDashboard(ctx context.Context) (dto.AdminDashboardResponse, error) {
	const cacheKey = "analytics:dashboard"
	tracer := otel.Tracer("github.com/sorties-app/sorties-api/internal/service/admin_analytics")
	ctx, span := tracer.Start(ctx, "analytics.aggregate")
	span.SetAttributes(attribute.String("analytics.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.AdminDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			span.RecordError(err)
		}
	}

	response, err := s.aggregate(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dashboard_aggregation_failed")
		return dto.AdminDashboardResponse{}, err
	}

	span.SetAttributes(
		attribute.Int64("analytics.total_users", response.TotalUsers),
		attribute.Int64("analytics.pending_activities", response.PendingActivities),
	)

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}

func (s *adminAnalyticsService) aggregate(ctx context.Context) (dto.AdminDashboardResponse, error) {
	totalUsers, err := s.repo.CountUsers(ctx, "")
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	activeUsers, err := s.repo.CountUsers(ctx, models.UserStatusActive)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	pending, err := s.repo.CountActivities(ctx, models.ActivityStatusPending)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	approved, err := s.repo.CountActivities(ctx, models.ActivityStatusApproved)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	comments, err := s.repo.CountComments(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	rating, err := s.repo.AverageRating(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	registrations, err := s.repo.ListUserRegistrations(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	creations, err := s.repo.ListActivityCreations(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	return dto.AdminDashboardResponse{
		TotalUsers:            totalUsers,
		ActiveUsers:           activeUsers,
		PendingActivities:     pending,
		ApprovedActivities:    approved,
		TotalComments:         comments,
		AverageRating:         rating,
		RegistrationsPerMonth: BucketByMonth(registrations, func(t time.Time) time.Time { return t }),
		ActivitiesPerMonth:    BucketByMonth(creations, func(t time.Time) time.Time { return t }),
		GeneratedAt:           s.now(),
		CacheHit:              false,
	}, nil
}

// BucketByMonth groups items by the (year, month) of the selected time
// field, chronologically ascending. Months with no items are omitted: the
// series is sparse, not zero-filled.
func BucketByMonth[T any](items []T, at func(T) time.Time) []dto.MonthBucketResponse {
	counts := make(map[time.Time]int64)
	for _, item := range items {
		t := at(item).UTC()
		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		counts[month]++
	}

	months := make([]time.Time, 0, len(counts))
	for month := range counts {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	buckets := make([]dto.MonthBucketResponse, 0, len(months))
	for _, month := range months {
		buckets = append(buckets, dto.MonthBucketResponse{
			Label: month.Format("Jan 2006"),
			Count: counts[month],
		})
	}
	return buckets
}
