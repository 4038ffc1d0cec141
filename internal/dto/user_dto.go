package dto

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/sorties-app/sorties-api/internal/models"
)

// UserResponse serializes a member for API consumers.
type UserResponse struct {
	ID        uint              `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Avatar    string            `json:"avatar"`
	Role      string            `json:"role"`
	Status    string            `json:"status"`
	Phone     string            `json:"phone,omitempty"`
	Gender    string            `json:"gender,omitempty"`
	Hobbies   []string          `json:"hobbies"`
	Socials   map[string]string `json:"socials"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// UserListRequest defines filters for directory and admin user listings.
type UserListRequest struct {
	Page           int
	PageSize       int
	Search         string
	Role           string
	Status         string
	Sort           string
	IncludeDeleted bool
}

// UserListResponse wraps a paginated user listing.
type UserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// ProfilePatchRequest enumerates exactly the profile fields a member may
// change. Identity, role, status and timestamps are not part of the type so
// they cannot arrive through this path.
type ProfilePatchRequest struct {
	Name    *string           `json:"name" validate:"omitempty,min=2,max=255"`
	Avatar  *string           `json:"avatar" validate:"omitempty,url"`
	Phone   *string           `json:"phone" validate:"omitempty,max=64"`
	Gender  *string           `json:"gender" validate:"omitempty,oneof=female male other unspecified"`
	Hobbies []string          `json:"hobbies" validate:"omitempty,max=20,dive,min=1,max=64"`
	Socials map[string]string `json:"socials" validate:"omitempty,dive,keys,min=1,endkeys,max=255"`
}

// NewUserResponse converts a user model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Avatar:    user.Avatar,
		Role:      user.Role,
		Status:    user.Status,
		Phone:     user.Phone,
		Gender:    user.Gender,
		Hobbies:   stringsFromJSON(user.Hobbies),
		Socials:   stringMapFromJSON(user.Socials),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func stringsFromJSON(data datatypes.JSON) []string {
	result := make([]string, 0)
	if len(data) == 0 {
		return result
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return []string{}
	}
	return result
}

func stringMapFromJSON(data datatypes.JSONMap) map[string]string {
	result := make(map[string]string)
	for key, raw := range data {
		if value, ok := raw.(string); ok {
			result[key] = value
		}
	}
	return result
}

// JSONFromStrings encodes a string slice for storage in a JSON column.
func JSONFromStrings(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(encoded)
}

// JSONMapFromStrings encodes a string map for storage in a JSON column.
func JSONMapFromStrings(values map[string]string) datatypes.JSONMap {
	data := datatypes.JSONMap{}
	for key, value := range values {
		data[key] = value
	}
	return data
}
