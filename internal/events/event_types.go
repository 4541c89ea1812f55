package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered     EventType = "user_registered"
	EventUserLoggedIn       EventType = "user_logged_in"
	EventUserLoggedOut      EventType = "user_logged_out"
	EventUserProfileUpdated EventType = "user_profile_updated"
)

// Event represents a lifecycle event emitted by the user service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    int64       `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string `json:"username"`
}

// UserLoggedInPayload payload.
type UserLoggedInPayload struct {
	Username string `json:"username"`
}

// UserLoggedOutPayload payload.
type UserLoggedOutPayload struct {
	Username string `json:"username"`
}

// UserProfileUpdatedPayload payload.
type UserProfileUpdatedPayload struct {
	OldUsername     string     `json:"old_username"`
	NewUsername     string     `json:"new_username"`
	BirthdayChanged bool       `json:"birthday_changed"`
	Birthday        *time.Time `json:"birthday,omitempty"`
}
