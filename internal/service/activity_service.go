package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/models"
	"github.com/sorties-app/sorties-api/internal/repository"
)

var (
	// ErrActivityNotFound indicates the activity does not exist.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrActivityFull indicates the roster reached max participants.
	ErrActivityFull = errors.New("activity is full")
	// ErrAlreadyJoined indicates the user is already on the roster.
	ErrAlreadyJoined = errors.New("already joined")
	// ErrNotAParticipant indicates the user is not on the roster. Leaving is
	// not idempotent: leaving an activity you never joined is an error.
	ErrNotAParticipant = errors.New("not a participant")
)

// ActivityService implements the member-facing activity operations: propose,
// browse, join, leave and review.
type ActivityService interface {
	Create(ctx context.Context, organizerID uint, payload dto.ActivityCreateRequest) (dto.ActivityResponse, error)
	Get(ctx context.Context, id uint, viewer Viewer) (dto.ActivityResponse, error)
	List(ctx context.Context, req dto.ActivityListRequest, viewer Viewer) (dto.ActivityListResponse, error)
	Join(ctx context.Context, activityID, userID uint) error
	Leave(ctx context.Context, activityID, userID uint) error
	AddComment(ctx context.Context, activityID, authorID uint, payload dto.CommentCreateRequest) (dto.CommentResponse, error)
}

type activityService struct {
	activities repository.ActivityRepository
	users      repository.UserRepository
	validator  *validator.Validate
	policy     *bluemonday.Policy
	logger     zerolog.Logger
}

// NewActivityService constructs the activity service.
func NewActivityService(activities repository.ActivityRepository, users repository.UserRepository, validator *validator.Validate, logger zerolog.Logger) ActivityService {
	return &activityService{
		activities: activities,
		users:      users,
		validator:  validator,
		policy:     bluemonday.UGCPolicy(),
		logger:     logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Create(ctx context.Context, organizerID uint, payload dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ActivityResponse{}, err
	}

	date, err := time.Parse(time.RFC3339, payload.Date)
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	organizer, err := s.users.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActivityResponse{}, ErrUserNotFound
		}
		return dto.ActivityResponse{}, err
	}
	if organizer.IsDeleted() {
		return dto.ActivityResponse{}, ErrUserNotFound
	}

	activity := models.Activity{
		Title:           strings.TrimSpace(payload.Title),
		Description:     s.policy.Sanitize(strings.TrimSpace(payload.Description)),
		Location:        strings.TrimSpace(payload.Location),
		Category:        strings.ToLower(strings.TrimSpace(payload.Category)),
		Date:            date,
		Images:          dto.JSONFromStrings(payload.Images),
		MaxParticipants: payload.MaxParticipants,
		Status:          models.ActivityStatusPending,
		// Organizer identity is frozen here. A later rename or avatar change
		// does not rewrite this label.
		OrganizerID:     organizer.ID,
		OrganizerName:   organizer.Name,
		OrganizerAvatar: organizer.Avatar,
	}

	if err := s.activities.Create(ctx, &activity); err != nil {
		return dto.ActivityResponse{}, err
	}

	s.logger.Info().Uint("activity_id", activity.ID).Uint("organizer_id", organizer.ID).Msg("activity proposed")
	return dto.NewActivityResponse(activity, nil, nil), nil
}

func (s *activityService) Get(ctx context.Context, id uint, viewer Viewer) (dto.ActivityResponse, error) {
	activity, err := s.activities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActivityResponse{}, ErrActivityNotFound
		}
		return dto.ActivityResponse{}, err
	}

	// Pending proposals are an admin-only view.
	if activity.Status != models.ActivityStatusApproved && viewer.Role != models.RoleAdmin {
		return dto.ActivityResponse{}, ErrActivityNotFound
	}

	return s.buildResponse(ctx, activity, viewer)
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest, viewer Viewer) (dto.ActivityListResponse, error) {
	status := strings.TrimSpace(req.Status)
	if viewer.Role != models.RoleAdmin {
		status = models.ActivityStatusApproved
	}

	filter := repository.ActivityFilter{
		Search:   strings.TrimSpace(req.Search),
		Category: strings.ToLower(strings.TrimSpace(req.Category)),
		Status:   status,
		Sort:     req.Sort,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	activities, total, err := s.activities.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	responses := make([]dto.ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		response, err := s.buildResponse(ctx, activity, viewer)
		if err != nil {
			return dto.ActivityListResponse{}, err
		}
		responses = append(responses, response)
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.ActivityListResponse{Items: responses, Pagination: pagination}, nil
}

func (s *activityService) Join(ctx context.Context, activityID, userID uint) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsDeleted() {
		return ErrUserNotFound
	}

	if err := s.activities.Join(ctx, activityID, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrCapacityReached):
			return ErrActivityFull
		case errors.Is(err, repository.ErrParticipantExists):
			return ErrAlreadyJoined
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrActivityNotFound
		default:
			return err
		}
	}

	s.logger.Info().Uint("activity_id", activityID).Uint("user_id", userID).Msg("participant joined")
	return nil
}

func (s *activityService) Leave(ctx context.Context, activityID, userID uint) error {
	if err := s.activities.Leave(ctx, activityID, userID); err != nil {
		if errors.Is(err, repository.ErrParticipantMissing) {
			return ErrNotAParticipant
		}
		return err
	}

	s.logger.Info().Uint("activity_id", activityID).Uint("user_id", userID).Msg("participant left")
	return nil
}

// AddComment only accepts reviews from current participants.
func (s *activityService) AddComment(ctx context.Context, activityID, authorID uint, payload dto.CommentCreateRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommentResponse{}, err
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CommentResponse{}, ErrUserNotFound
		}
		return dto.CommentResponse{}, err
	}
	if author.IsDeleted() {
		return dto.CommentResponse{}, ErrUserNotFound
	}

	joined, err := s.activities.IsParticipant(ctx, activityID, authorID)
	if err != nil {
		return dto.CommentResponse{}, err
	}
	if !joined {
		return dto.CommentResponse{}, ErrNotAParticipant
	}

	comment := models.Comment{
		ActivityID:   activityID,
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorAvatar: author.Avatar,
		Text:         s.policy.Sanitize(strings.TrimSpace(payload.Text)),
		Rating:       payload.Rating,
	}

	if err := s.activities.AddComment(ctx, &comment); err != nil {
		return dto.CommentResponse{}, err
	}

	return dto.NewCommentResponse(comment), nil
}

// buildResponse resolves roster and comment authors, then applies the
// visibility filter for the viewer.
func (s *activityService) buildResponse(ctx context.Context, activity models.Activity, viewer Viewer) (dto.ActivityResponse, error) {
	ids := make([]uint, 0, len(activity.Participants)+len(activity.Comments))
	seen := make(map[uint]struct{})
	for _, row := range activity.Participants {
		if _, ok := seen[row.UserID]; !ok {
			seen[row.UserID] = struct{}{}
			ids = append(ids, row.UserID)
		}
	}
	for _, comment := range activity.Comments {
		if _, ok := seen[comment.AuthorID]; !ok {
			seen[comment.AuthorID] = struct{}{}
			ids = append(ids, comment.AuthorID)
		}
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	usersByID := make(map[uint]models.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	participants := make([]dto.ParticipantResponse, 0, len(activity.Participants))
	for _, user := range VisibleParticipants(activity.Participants, usersByID, viewer) {
		participants = append(participants, dto.ParticipantResponse{
			ID:     user.ID,
			Name:   user.Name,
			Avatar: user.Avatar,
		})
	}

	comments := make([]dto.CommentResponse, 0, len(activity.Comments))
	for _, comment := range VisibleComments(activity.Comments, usersByID, viewer) {
		comments = append(comments, dto.NewCommentResponse(comment))
	}

	return dto.NewActivityResponse(activity, participants, comments), nil
}
