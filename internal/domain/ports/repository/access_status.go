package repository

import (
	"context"

	"ai-access-platform/internal/domain/model"
)

// AccessStatusRepository is the port for per-user access rows.
type AccessStatusRepository interface {
	// Save upserts the row keyed by UserID. A user has at most one row.
	Save(ctx context.Context, tx Tx, st *model.AccessStatus) error
	// FindByUserID returns domain.ErrNotFound when the user has no row yet.
	FindByUserID(ctx context.Context, tx Tx, userID string) (*model.AccessStatus, error)
	CountByStatus(ctx context.Context, tx Tx) (map[string]int, error)
}
