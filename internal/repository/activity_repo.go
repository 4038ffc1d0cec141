package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sorties-app/sorties-api/internal/models"
)

// Sentinel errors surfaced by the participation transaction. The service
// layer maps them onto its public error taxonomy.
var (
	// ErrParticipantExists indicates the user already joined the activity.
	ErrParticipantExists = errors.New("participant already registered")
	// ErrCapacityReached indicates the activity is at max participants.
	ErrCapacityReached = errors.New("activity capacity reached")
	// ErrParticipantMissing indicates the user is not on the roster.
	ErrParticipantMissing = errors.New("participant not registered")
)

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	Search   string
	Category string
	Status   string
	Sort     string
	Page     int
	PageSize int
}

// ActivityRepository persists activities together with their owned
// participant rows and comments.
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id uint) (models.Activity, error)
	List(ctx context.Context, filter ActivityFilter) ([]models.Activity, int64, error)
	ListAll(ctx context.Context) ([]models.Activity, error)
	SetStatus(ctx context.Context, id uint, from, to string) error
	Delete(ctx context.Context, id uint) error
	Join(ctx context.Context, activityID, userID uint) error
	Leave(ctx context.Context, activityID, userID uint) error
	IsParticipant(ctx context.Context, activityID, userID uint) (bool, error)
	AddComment(ctx context.Context, comment *models.Comment) error
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs the activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) GetByID(ctx context.Context, id uint) (models.Activity, error) {
	var activity models.Activity
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&activity).Error
	if err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter) ([]models.Activity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(location) LIKE ?", like, like)
	}

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := filter.Sort
	if sort == "" {
		sort = "date ASC"
	}
	query = query.Order(sort)

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var activities []models.Activity
	err := query.
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Find(&activities).Error
	if err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}

func (r *activityRepository) ListAll(ctx context.Context) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("id ASC").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// SetStatus transitions an activity only when its current status matches
// from, so a terminal state cannot be overwritten.
func (r *activityRepository) SetStatus(ctx context.Context, id uint, from, to string) error {
	result := r.db.WithContext(ctx).Model(&models.Activity{}).
		Where("id = ?", id).
		Where("status = ?", from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the activity and everything it owns.
func (r *activityRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", id).Delete(&models.ActivityParticipant{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Activity{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Join appends the user to the roster inside a transaction so the capacity
// check and the insert cannot interleave with a concurrent join.
func (r *activityRepository) Join(ctx context.Context, activityID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activity models.Activity
		if err := tx.Where("id = ?", activityID).First(&activity).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.ActivityParticipant{}).
			Where("activity_id = ? AND user_id = ?", activityID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrParticipantExists
		}

		var count int64
		if err := tx.Model(&models.ActivityParticipant{}).
			Where("activity_id = ?", activityID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(activity.MaxParticipants) {
			return ErrCapacityReached
		}

		return tx.Create(&models.ActivityParticipant{ActivityID: activityID, UserID: userID}).Error
	})
}

func (r *activityRepository) Leave(ctx context.Context, activityID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("activity_id = ? AND user_id = ?", activityID, userID).
		Delete(&models.ActivityParticipant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipantMissing
	}
	return nil
}

func (r *activityRepository) IsParticipant(ctx context.Context, activityID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ActivityParticipant{}).
		Where("activity_id = ? AND user_id = ?", activityID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *activityRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}
