package auth

import (
	"time"

	"github.com/google/uuid"
)

// Session is the resolved identity of the caller for one request.
type Session struct {
	UserID     uuid.UUID
	Email      string
	IsAdmin    bool
	ResolvedAt time.Time
}

// Claims are the verified contents of an access token.
type Claims struct {
	Subject   uuid.UUID
	Email     string
	ExpiresAt time.Time
}
