package repository

import (
	"context"
	"time"

	"ai-access-platform/internal/domain/model"
)

// ActivationCodeRepository is the port for managing activation codes.
type ActivationCodeRepository interface {
	// Save creates or updates an activation code.
	Save(ctx context.Context, tx Tx, code *model.ActivationCode) error
	// FindByCode finds a code by its value regardless of state. Redemption
	// callers pass a transaction so the row stays locked until commit.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.ActivationCode, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.ActivationCode, error)
	// FindClaimedByUserID returns the code a user redeemed, if any.
	FindClaimedByUserID(ctx context.Context, tx Tx, userID string) (*model.ActivationCode, error)
	// List returns codes ordered by creation time, newest first.
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.ActivationCode, error)
	Count(ctx context.Context, tx Tx) (int, error)
	CountClaimed(ctx context.Context, tx Tx) (int, error)
	// Delete removes an unclaimed code.
	Delete(ctx context.Context, tx Tx, id string) error
	// DeactivateExpired flips active=false on unclaimed codes whose expiry has
	// passed, returning how many rows changed.
	DeactivateExpired(ctx context.Context, tx Tx, now time.Time) (int, error)
}
