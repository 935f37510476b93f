package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")

	// Activation code lifecycle
	ErrCodeNotFound    = errors.New("activation code not found")
	ErrCodeAlreadyUsed = errors.New("activation code already used")
	ErrCodeDeactivated = errors.New("activation code has been deactivated")
	ErrCodeExpired     = errors.New("activation code has expired")
	ErrCodeClaimed     = errors.New("claimed codes cannot be deleted")

	// Access states
	ErrAccessDenied    = errors.New("ai access required")
	ErrAccessSuspended = errors.New("ai access has been suspended")
	ErrAccessBlocked   = errors.New("account is blocked")

	// Auth
	ErrUnauthenticated = errors.New("authentication required")
	ErrAdminRequired   = errors.New("admin access required")
)
