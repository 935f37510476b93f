package repository

import (
	"context"
	"time"

	"ai-access-platform/internal/domain/model"
)

// UserRepository is the port for account rows mirrored from the auth tokens.
type UserRepository interface {
	// Save creates or updates a user (upsert by ID).
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	// List returns users ordered by creation time, newest first.
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
	CountInactiveUsers(ctx context.Context, tx Tx, since time.Time) (int, error)
}
