package entity

import (
	"time"
)

// Session is an authenticated identity as carried by a session token.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}
