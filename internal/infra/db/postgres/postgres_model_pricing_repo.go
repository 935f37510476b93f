package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ai-access-platform/internal/domain"
	"ai-access-platform/internal/domain/model"
	"ai-access-platform/internal/domain/ports/repository"
)

var _ repository.ModelPricingRepository = (*modelPricingRepo)(nil)

type modelPricingRepo struct {
	pool *pgxpool.Pool
}

func NewModelPricingRepo(pool *pgxpool.Pool) repository.ModelPricingRepository {
	return &modelPricingRepo{pool: pool}
}

func (r *modelPricingRepo) Create(ctx context.Context, tx repository.Tx, p *model.ModelPricing) error {
	const q = `
INSERT INTO model_pricing (id, model_name, input_price_micros, output_price_micros, context_window, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.ModelName, p.InputTokenPriceMicros, p.OutputTokenPriceMicros, p.ContextWindow, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *modelPricingRepo) Update(ctx context.Context, tx repository.Tx, p *model.ModelPricing) error {
	const q = `
UPDATE model_pricing
   SET input_price_micros = $2, output_price_micros = $3, context_window = $4, active = $5, updated_at = $6
 WHERE model_name = $1;
`
	tag, err := execSQL(ctx, r.pool, tx, q,
		p.ModelName, p.InputTokenPriceMicros, p.OutputTokenPriceMicros, p.ContextWindow, p.Active, time.Now(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *modelPricingRepo) GetByModelName(ctx context.Context, tx repository.Tx, name string) (*model.ModelPricing, error) {
	const q = `
SELECT id, model_name, input_price_micros, output_price_micros, context_window, active, created_at, updated_at
  FROM model_pricing WHERE model_name = $1 AND active = TRUE;
`
	row, err := pickRow(ctx, r.pool, tx, q, name)
	if err != nil {
		return nil, err
	}
	var p model.ModelPricing
	err = row.Scan(&p.ID, &p.ModelName, &p.InputTokenPriceMicros, &p.OutputTokenPriceMicros, &p.ContextWindow, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}

func (r *modelPricingRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.ModelPricing, error) {
	const q = `
SELECT id, model_name, input_price_micros, output_price_micros, context_window, active, created_at, updated_at
  FROM model_pricing WHERE active = TRUE ORDER BY model_name;
`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ModelPricing
	for rows.Next() {
		var p model.ModelPricing
		err = rows.Scan(&p.ID, &p.ModelName, &p.InputTokenPriceMicros, &p.OutputTokenPriceMicros, &p.ContextWindow, &p.Active, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
