package dto

import (
	"time"

	"github.com/spec-kit/user-account-service/internal/domain"
)

// UserCreateRequest payload for registration.
type UserCreateRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// UserUpdateRequest payload for profile edits. Absent fields leave the
// record unchanged.
type UserUpdateRequest struct {
	Username string     `json:"username"`
	Birthday *time.Time `json:"birthday"`
}

// UserResponse is the external projection of a user record.
type UserResponse struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Username     string            `json:"username"`
	Token        string            `json:"token"`
	LoggedIn     bool              `json:"logged_in"`
	Status       domain.UserStatus `json:"status"`
	CreationDate time.Time         `json:"creation_date"`
	Birthday     *time.Time        `json:"birthday,omitempty"`
}

// NewUserResponse projects a domain user. logged_in is always derived from
// status here, never read from storage.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Username:     user.Username,
		Token:        user.Token,
		LoggedIn:     user.LoggedIn(),
		Status:       user.Status,
		CreationDate: user.CreationDate,
		Birthday:     user.Birthday,
	}
}

// NewUserResponses projects a list of users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
