package service

import "github.com/sorties-app/sorties-api/internal/models"

// Viewer describes the read context a visibility decision is made for.
// IncludeDeleted only takes effect for administrators; a member can never
// opt into seeing deleted users.
type Viewer struct {
	UserID         uint
	Role           string
	IncludeDeleted bool
}

// CanSeeDeleted reports whether soft-deleted users are visible to the viewer.
func (v Viewer) CanSeeDeleted() bool {
	return v.Role == models.RoleAdmin && v.IncludeDeleted
}

// VisibleUsers filters a user list for the viewer. It is a pure function and
// must be re-applied on every read; nothing is cached on the entities.
func VisibleUsers(users []models.User, viewer Viewer) []models.User {
	if viewer.CanSeeDeleted() {
		return users
	}

	visible := make([]models.User, 0, len(users))
	for _, user := range users {
		if user.IsDeleted() {
			continue
		}
		visible = append(visible, user)
	}
	return visible
}

// VisibleParticipants resolves roster rows against the user index and drops
// entries whose user is soft-deleted or unresolvable. Join order is kept.
func VisibleParticipants(rows []models.ActivityParticipant, usersByID map[uint]models.User, viewer Viewer) []models.User {
	visible := make([]models.User, 0, len(rows))
	for _, row := range rows {
		user, ok := usersByID[row.UserID]
		if !ok {
			continue
		}
		if user.IsDeleted() && !viewer.CanSeeDeleted() {
			continue
		}
		visible = append(visible, user)
	}
	return visible
}

// VisibleComments drops comments whose author has been soft-deleted: the
// stored record survives, but without a resolvable author it is filtered
// from rendered output.
func VisibleComments(comments []models.Comment, usersByID map[uint]models.User, viewer Viewer) []models.Comment {
	if viewer.CanSeeDeleted() {
		return comments
	}

	visible := make([]models.Comment, 0, len(comments))
	for _, comment := range comments {
		author, ok := usersByID[comment.AuthorID]
		if !ok || author.IsDeleted() {
			continue
		}
		visible = append(visible, comment)
	}
	return visible
}
