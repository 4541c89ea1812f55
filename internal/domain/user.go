package domain

import "time"

// UserStatus marks whether a user currently holds an active session.
type UserStatus string

const (
	UserStatusOnline  UserStatus = "ONLINE"
	UserStatusOffline UserStatus = "OFFLINE"
)

// User is the domain model for registered accounts.
//
// Name doubles as the account secret: login compares the supplied password
// against it. Token is the opaque session credential, reissued on every
// successful create or login.
type User struct {
	ID           int64
	Name         string
	Username     string
	Token        string
	Status       UserStatus
	CreationDate time.Time
	Birthday     *time.Time
}

// LoggedIn derives the logged-in flag from Status. It is a projection only;
// no independent logged-in state is ever stored.
func (u *User) LoggedIn() bool {
	return u.Status == UserStatusOnline
}
