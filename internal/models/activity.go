package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity moderation statuses. Approved is terminal: there is no revert
// transition, only hard deletion.
const (
	ActivityStatusPending  = "pending"
	ActivityStatusApproved = "approved"
)

// Image count bounds enforced at creation time.
const (
	MinActivityImages = 1
	MaxActivityImages = 5
)

// Activity represents a community meetup proposed by a member.
//
// The organizer fields are a snapshot taken at creation time, not a live
// foreign key: renaming a user later does not rewrite past organizer labels.
// Date is the event time and is independent of CreatedAt.
type Activity struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	Location        string         `gorm:"size:255;not null" json:"location"`
	Category        string         `gorm:"size:64;not null" json:"category"`
	Date            time.Time      `gorm:"not null" json:"date"`
	Images          datatypes.JSON `gorm:"type:json" json:"images"`
	MaxParticipants int            `gorm:"not null" json:"max_participants"`
	Status          string         `gorm:"size:32;not null;default:pending" json:"status"`

	OrganizerID     uint   `gorm:"not null" json:"organizer_id"`
	OrganizerName   string `gorm:"size:255;not null" json:"organizer_name"`
	OrganizerAvatar string `gorm:"size:512" json:"organizer_avatar"`

	Participants []ActivityParticipant `gorm:"constraint:OnDelete:CASCADE" json:"participants,omitempty"`
	Comments     []Comment             `gorm:"constraint:OnDelete:CASCADE" json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActivityParticipant is one membership row. Join order is the insertion
// order of the rows (ascending id).
type ActivityParticipant struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActivityID uint      `gorm:"uniqueIndex:idx_activity_user;not null" json:"activity_id"`
	UserID     uint      `gorm:"uniqueIndex:idx_activity_user;not null" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Comment is a rated review owned exclusively by its parent activity.
// Author fields are a snapshot captured when the comment was written.
type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ActivityID   uint      `gorm:"index;not null" json:"activity_id"`
	AuthorID     uint      `gorm:"not null" json:"author_id"`
	AuthorName   string    `gorm:"size:255;not null" json:"author_name"`
	AuthorAvatar string    `gorm:"size:512" json:"author_avatar"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	Rating       int       `gorm:"not null" json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
}
