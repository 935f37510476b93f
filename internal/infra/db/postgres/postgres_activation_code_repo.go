package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ai-access-platform/internal/domain"
	"ai-access-platform/internal/domain/model"
	"ai-access-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.ActivationCodeRepository = (*activationCodeRepo)(nil)

type activationCodeRepo struct {
	pool *pgxpool.Pool
}

func NewActivationCodeRepo(pool *pgxpool.Pool) repository.ActivationCodeRepository {
	return &activationCodeRepo{pool: pool}
}

const codeColumns = `id, code, is_active, is_claimed, claimed_by_user_id, claimed_at, created_by_admin_id, notes, created_at, expires_at`

// Save creates or updates an activation code. ON CONFLICT covers both the
// initial insert and the transition to claimed/suspended.
func (r *activationCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}

	const q = `
INSERT INTO activation_codes (id, code, is_active, is_claimed, claimed_by_user_id, claimed_at, created_by_admin_id, notes, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
  is_active = EXCLUDED.is_active,
  is_claimed = EXCLUDED.is_claimed,
  claimed_by_user_id = EXCLUDED.claimed_by_user_id,
  claimed_at = EXCLUDED.claimed_at,
  notes = EXCLUDED.notes;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		code.ID, code.Code, code.Active, code.Claimed, code.ClaimedByUserID, code.ClaimedAt,
		code.CreatedByAdminID, code.Notes, code.CreatedAt, code.ExpiresAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// FindByCode looks up a code by value. Inside a transaction the row is locked
// so concurrent redemptions of the same code serialize on it.
func (r *activationCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.ActivationCode, error) {
	q := `SELECT ` + codeColumns + ` FROM activation_codes WHERE code = $1`
	if _, inTx := tx.(pgx.Tx); inTx {
		q += ` FOR UPDATE`
	}
	return r.scanOne(ctx, tx, q+`;`, code)
}

func (r *activationCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ActivationCode, error) {
	q := `SELECT ` + codeColumns + ` FROM activation_codes WHERE id = $1;`
	return r.scanOne(ctx, tx, q, id)
}

func (r *activationCodeRepo) FindClaimedByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.ActivationCode, error) {
	q := `SELECT ` + codeColumns + ` FROM activation_codes WHERE claimed_by_user_id = $1 AND is_claimed = TRUE;`
	return r.scanOne(ctx, tx, q, userID)
}

func (r *activationCodeRepo) scanOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.ActivationCode, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	var ac model.ActivationCode
	err = row.Scan(
		&ac.ID, &ac.Code, &ac.Active, &ac.Claimed, &ac.ClaimedByUserID, &ac.ClaimedAt,
		&ac.CreatedByAdminID, &ac.Notes, &ac.CreatedAt, &ac.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &ac, nil
}

func (r *activationCodeRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.ActivationCode, error) {
	q := `SELECT ` + codeColumns + ` FROM activation_codes ORDER BY created_at DESC OFFSET $1 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ActivationCode
	for rows.Next() {
		var ac model.ActivationCode
		err = rows.Scan(
			&ac.ID, &ac.Code, &ac.Active, &ac.Claimed, &ac.ClaimedByUserID, &ac.ClaimedAt,
			&ac.CreatedByAdminID, &ac.Notes, &ac.CreatedAt, &ac.ExpiresAt,
		)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &ac)
	}
	return out, rows.Err()
}

func (r *activationCodeRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	return r.countWhere(ctx, tx, `SELECT COUNT(*) FROM activation_codes;`)
}

func (r *activationCodeRepo) CountClaimed(ctx context.Context, tx repository.Tx) (int, error) {
	return r.countWhere(ctx, tx, `SELECT COUNT(*) FROM activation_codes WHERE is_claimed = TRUE;`)
}

func (r *activationCodeRepo) countWhere(ctx context.Context, tx repository.Tx, q string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes an unclaimed code. Claimed codes keep their audit trail and
// may only be deactivated.
func (r *activationCodeRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM activation_codes WHERE id = $1 AND is_claimed = FALSE;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either missing or claimed; let callers distinguish via FindByID.
		return domain.ErrNotFound
	}
	return nil
}

func (r *activationCodeRepo) DeactivateExpired(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	const q = `
UPDATE activation_codes
   SET is_active = FALSE
 WHERE is_active = TRUE AND is_claimed = FALSE
   AND expires_at IS NOT NULL AND expires_at < $1;
`
	tag, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
