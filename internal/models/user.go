package models

import (
	"time"

	"gorm.io/datatypes"
)

// User roles. A user holds exactly one role at a time.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User lifecycle statuses. Deleted is a soft state: the record stays in
// storage and can be restored by an administrator.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusDeleted  = "deleted"
)

// User represents a platform member or administrator.
//
// Email has no database-level unique index on purpose: uniqueness only holds
// among non-deleted users, which the repository enforces with a filtered
// lookup.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"size:255;index;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Avatar       string `gorm:"size:512" json:"avatar"`
	Role         string `gorm:"size:32;not null;default:member" json:"role"`
	Status       string `gorm:"size:32;not null;default:active" json:"status"`

	Phone   string            `gorm:"size:64" json:"phone"`
	Gender  string            `gorm:"size:32" json:"gender"`
	Hobbies datatypes.JSON    `gorm:"type:json" json:"hobbies"`
	Socials datatypes.JSONMap `gorm:"type:json" json:"socials"`

	ResetToken       *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDeleted reports whether the user has been soft-deleted.
func (u User) IsDeleted() bool {
	return u.Status == UserStatusDeleted
}
