package entities

import "errors"

// Domain errors
var (
	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidPassword   = errors.New("invalid password")

	// Organization errors
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrSalesRepNotFound     = errors.New("sales rep not found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidToken    = errors.New("invalid token")

	// Call errors
	ErrCallLogNotFound    = errors.New("call log not found")
	ErrTranscriptNotFound = errors.New("transcript not found")
	ErrNoTranscript       = errors.New("no transcript data available")
)
