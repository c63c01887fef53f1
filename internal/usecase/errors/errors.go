package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden access")
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
)

// Auth errors
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionRevoked       = errors.New("session revoked")
	ErrOrganizationRequired = errors.New("organization_id is required for sales reps")
	ErrManagerRequired      = errors.New("only managers can perform this action")
	ErrForeignOrganization  = errors.New("organization belongs to another tenant")
)

// Insights errors
var (
	ErrNoTranscription      = errors.New("call log has no transcription")
	ErrNoTranscriptProvided = errors.New("no transcript provided")
	ErrInsightsNotFound     = errors.New("no insights found")
	ErrInvalidTranscriptID  = errors.New("invalid transcript id")
	ErrQueueFull            = errors.New("insights queue is full")
	ErrTranscriberDisabled  = errors.New("transcription is not configured")
)

// Storage errors
var (
	ErrArchiveDisabled = errors.New("report archive is not configured")
)
