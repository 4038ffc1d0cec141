package dto

import (
	"time"

	"github.com/sorties-app/sorties-api/internal/models"
)

// AdminUserStatusRequest sets a user status from the moderation panel.
type AdminUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// AdminUserRoleRequest changes a user's role.
type AdminUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=member admin"`
}

// AuditLogListRequest defines filters for searching the audit trail.
type AuditLogListRequest struct {
	Query    string
	Page     int
	PageSize int
}

// AuditLogResponse serializes one audit trail entry.
type AuditLogResponse struct {
	ID        uint      `json:"id"`
	AdminID   uint      `json:"admin_id"`
	AdminName string    `json:"admin_name"`
	Action    string    `json:"action"`
	TargetID  uint      `json:"target_id"`
	Details   string    `json:"details"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditLogListResponse wraps paginated audit entries.
type AuditLogListResponse struct {
	Items      []AuditLogResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewAuditLogResponse converts an audit log model into a DTO.
func NewAuditLogResponse(entry models.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:        entry.ID,
		AdminID:   entry.AdminID,
		AdminName: entry.AdminName,
		Action:    entry.Action,
		TargetID:  entry.TargetID,
		Details:   entry.Details,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		CreatedAt: entry.CreatedAt,
	}
}

// MonthBucketResponse is one point of a per-month chart series. Months with
// no items are omitted rather than zero-filled.
type MonthBucketResponse struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// AdminDashboardResponse aggregates the metrics behind the admin dashboard.
type AdminDashboardResponse struct {
	TotalUsers            int64                 `json:"total_users"`
	ActiveUsers           int64                 `json:"active_users"`
	PendingActivities     int64                 `json:"pending_activities"`
	ApprovedActivities    int64                 `json:"approved_activities"`
	TotalComments         int64                 `json:"total_comments"`
	AverageRating         float64               `json:"average_rating"`
	RegistrationsPerMonth []MonthBucketResponse `json:"registrations_per_month"`
	ActivitiesPerMonth    []MonthBucketResponse `json:"activities_per_month"`
	GeneratedAt           time.Time             `json:"generated_at"`
	CacheHit              bool                  `json:"cache_hit"`
}

// UploadResponse describes a stored image.
type UploadResponse struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
