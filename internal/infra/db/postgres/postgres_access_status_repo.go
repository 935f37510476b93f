package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ai-access-platform/internal/domain"
	"ai-access-platform/internal/domain/model"
	"ai-access-platform/internal/domain/ports/repository"
)

var _ repository.AccessStatusRepository = (*accessStatusRepo)(nil)

type accessStatusRepo struct {
	pool *pgxpool.Pool
}

func NewAccessStatusRepo(pool *pgxpool.Pool) repository.AccessStatusRepository {
	return &accessStatusRepo{pool: pool}
}

// Save upserts keyed on user_id, which is the table's primary key. That is
// what actually enforces the one-row-per-user invariant.
func (r *accessStatusRepo) Save(ctx context.Context, tx repository.Tx, st *model.AccessStatus) error {
	const q = `
INSERT INTO ai_access_status (user_id, has_access, is_suspended, is_blocked, status, message, code, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id) DO UPDATE SET
  has_access = EXCLUDED.has_access,
  is_suspended = EXCLUDED.is_suspended,
  is_blocked = EXCLUDED.is_blocked,
  status = EXCLUDED.status,
  message = EXCLUDED.message,
  code = EXCLUDED.code,
  updated_at = EXCLUDED.updated_at;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		st.UserID, st.HasAccess, st.IsSuspended, st.IsBlocked, st.Status, st.Message, st.Code, st.UpdatedAt,
	)
	return err
}

func (r *accessStatusRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.AccessStatus, error) {
	const q = `
SELECT user_id, has_access, is_suspended, is_blocked, status, message, code, updated_at
  FROM ai_access_status WHERE user_id = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	var st model.AccessStatus
	err = row.Scan(&st.UserID, &st.HasAccess, &st.IsSuspended, &st.IsBlocked, &st.Status, &st.Message, &st.Code, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &st, nil
}

func (r *accessStatusRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[string]int, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT status, COUNT(*) FROM ai_access_status GROUP BY status;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[status] = n
	}
	return out, rows.Err()
}
