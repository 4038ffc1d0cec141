package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/sorties-app/sorties-api/internal/models"
)

// AuditLogFilter narrows audit trail queries. Query matches as a
// case-insensitive substring across admin name, action, details, IP address
// and target id.
type AuditLogFilter struct {
	Query    string
	Page     int
	PageSize int
}

// AuditLogRepository is the append-only store behind the audit trail. There
// is deliberately no update or delete operation.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	Search(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository constructs the audit log repository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepository) Search(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(admin_name) LIKE ? OR LOWER(action) LIKE ? OR LOWER(details) LIKE ? OR LOWER(ip_address) LIKE ? OR CAST(target_id AS TEXT) LIKE ?",
			like, like, like, like, like,
		)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var entries []models.AuditLog
	if err := query.Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
