package models

import "time"

// Privileged actions recorded in the audit trail.
const (
	AuditActionActivityApproved = "activity.approved"
	AuditActionActivityDeleted  = "activity.deleted"
	AuditActionUserStatusSet    = "user.status_changed"
	AuditActionUserDeleted      = "user.deleted"
	AuditActionUserRestored     = "user.restored"
	AuditActionUserRoleChanged  = "user.role_changed"
)

// AuditLog is one append-only record of a privileged admin action. Admin
// fields are a snapshot of the acting administrator; entries are never
// updated or deleted.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AdminID   uint      `gorm:"not null;index" json:"admin_id"`
	AdminName string    `gorm:"size:255;not null" json:"admin_name"`
	Action    string    `gorm:"size:64;not null;index" json:"action"`
	TargetID  uint      `gorm:"not null" json:"target_id"`
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:64" json:"ip_address"`
	UserAgent string    `gorm:"size:512" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
