package auth

import "errors"

var (
	ErrTokenMissing = errors.New("Unauthorized: Access token missing")
	ErrInvalidToken = errors.New("Unauthorized: Invalid or expired access token")
	ErrNotAdmin     = errors.New("Forbidden: Not an admin")

	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidCredentials    = errors.New("Invalid login credentials")
	ErrAccountBlocked        = errors.New("User is banned")
	ErrEmailTaken            = errors.New("User already registered")
	ErrMobileTaken           = errors.New("Mobile number is already registered.")
	ErrLocalAuthDisabled     = errors.New("Local sign-in is disabled")
)
