package events

import (
	"time"

	"github.com/dshills/pulse/event"
)

// User event definitions.
var (
	// UserLogin is emitted when a user authenticates successfully.
	UserLogin = event.Define[UserLoginPayload]("user:login")

	// UserLogout is emitted when a user session ends.
	UserLogout = event.Define[UserLogoutPayload]("user:logout")
)

// UserLoginPayload is the payload for user:login.
type UserLoginPayload struct {
	// UserID identifies the user who logged in.
	UserID string

	// Timestamp is when authentication completed.
	Timestamp time.Time

	// IP is the remote address the login came from, if known.
	IP string
}

// UserLogoutPayload is the payload for user:logout.
type UserLogoutPayload struct {
	// UserID identifies the user who logged out.
	UserID string

	// SessionDuration is how long the session lasted.
	SessionDuration time.Duration
}
