package model

import (
	"strings"
	"time"

	"ai-access-platform/internal/domain"
)

// User is a domain entity representing a dashboard account. The ID is the
// subject claim of the auth token, so the same identifier is shared with the
// identity provider that issued it.
type User struct {
	ID          string
	Email       string
	IsAdmin     bool
	HasAIAccess bool
	CreatedAt   time.Time
	LastSeenAt  time.Time
}

func NewUser(id, email string) (*User, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:         id,
		Email:      strings.ToLower(strings.TrimSpace(email)),
		CreatedAt:  now,
		LastSeenAt: now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.LastSeenAt = time.Now() }
