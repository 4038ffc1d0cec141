package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/sorties-app/sorties-api/internal/models"
)

// UserFilter narrows directory and admin user listings.
type UserFilter struct {
	Search         string
	Role           string
	Status         string
	Sort           string
	Page           int
	PageSize       int
	IncludeDeleted bool
}

// UserRepository persists member and administrator accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByResetToken(ctx context.Context, token string) (models.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	ListAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// FindByEmail matches case-insensitively among non-deleted users only, so a
// soft-deleted account never blocks re-registration of its address.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Where("status <> ?", models.UserStatusDeleted).
		First(&user).Error
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) FindByResetToken(ctx context.Context, token string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("reset_token = ?", token).
		Where("status <> ?", models.UserStatusDeleted).
		First(&user).Error
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if !filter.IncludeDeleted {
		query = query.Where("status <> ?", models.UserStatusDeleted)
	}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
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
		sort = "created_at DESC"
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

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) ListAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error) {
	tx := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id)

	result := tx.Updates(updates)
	if result.Error != nil {
		return models.User{}, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return models.User{}, err
		}
	}

	return r.GetByID(ctx, id)
}
