package dto

import (
	"time"

	"github.com/sorties-app/sorties-api/internal/models"
)

// ActivityCreateRequest captures a member's activity proposal.
type ActivityCreateRequest struct {
	Title           string   `json:"title" validate:"required,min=3,max=255"`
	Description     string   `json:"description" validate:"omitempty,max=5000"`
	Location        string   `json:"location" validate:"required,min=2,max=255"`
	Category        string   `json:"category" validate:"required,min=2,max=64"`
	Date            string   `json:"date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Images          []string `json:"images" validate:"required,min=1,max=5,dive,url"`
	MaxParticipants int      `json:"max_participants" validate:"required,gte=1"`
}

// ActivityListRequest defines filters for listing activities.
type ActivityListRequest struct {
	Page     int
	PageSize int
	Search   string
	Category string
	Status   string
	Sort     string
}

// CommentCreateRequest captures a participant review.
type CommentCreateRequest struct {
	Text   string `json:"text" validate:"required,min=1,max=2000"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
}

// OrganizerResponse is the creation-time snapshot of the organizer.
type OrganizerResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// ParticipantResponse is one visible roster entry.
type ParticipantResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// CommentResponse serializes a visible comment.
type CommentResponse struct {
	ID           uint      `json:"id"`
	AuthorID     uint      `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	Text         string    `json:"text"`
	Rating       int       `json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
}

// ActivityResponse serializes an activity with its visible roster and
// comments already filtered for the viewer.
type ActivityResponse struct {
	ID              uint                  `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Location        string                `json:"location"`
	Category        string                `json:"category"`
	Date            time.Time             `json:"date"`
	Images          []string              `json:"images"`
	MaxParticipants int                   `json:"max_participants"`
	Status          string                `json:"status"`
	Organizer       OrganizerResponse     `json:"organizer"`
	Participants    []ParticipantResponse `json:"participants"`
	Comments        []CommentResponse     `json:"comments"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// ActivityListResponse wraps a paginated activity listing.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewCommentResponse converts a comment model into a DTO.
func NewCommentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:           comment.ID,
		AuthorID:     comment.AuthorID,
		AuthorName:   comment.AuthorName,
		AuthorAvatar: comment.AuthorAvatar,
		Text:         comment.Text,
		Rating:       comment.Rating,
		CreatedAt:    comment.CreatedAt,
	}
}

// NewActivityResponse converts an activity model into a DTO. Participants
// and comments are supplied already filtered by the caller.
func NewActivityResponse(activity models.Activity, participants []ParticipantResponse, comments []CommentResponse) ActivityResponse {
	if participants == nil {
		participants = []ParticipantResponse{}
	}
	if comments == nil {
		comments = []CommentResponse{}
	}

	return ActivityResponse{
		ID:              activity.ID,
		Title:           activity.Title,
		Description:     activity.Description,
		Location:        activity.Location,
		Category:        activity.Category,
		Date:            activity.Date,
		Images:          stringsFromJSON(activity.Images),
		MaxParticipants: activity.MaxParticipants,
		Status:          activity.Status,
		Organizer: OrganizerResponse{
			ID:     activity.OrganizerID,
			Name:   activity.OrganizerName,
			Avatar: activity.OrganizerAvatar,
		},
		Participants: participants,
		Comments:     comments,
		CreatedAt:    activity.CreatedAt,
		UpdatedAt:    activity.UpdatedAt,
	}
}
