package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"ai-access-platform/internal/domain"
	"ai-access-platform/internal/domain/model"
	"ai-access-platform/internal/domain/ports/repository"
)

var _ repository.SelectionLogRepository = (*selectionLogRepo)(nil)

type selectionLogRepo struct {
	pool *pgxpool.Pool
}

func NewSelectionLogRepo(pool *pgxpool.Pool) repository.SelectionLogRepository {
	return &selectionLogRepo{pool: pool}
}

func (r *selectionLogRepo) AppendSelection(ctx context.Context, tx repository.Tx, rec *model.SelectionRecord) error {
	const q = `
INSERT INTO model_selection_log (id, user_id, selected_model, suggested_model, task_type, confidence, preference_respected, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		rec.ID, rec.UserID, rec.SelectedModel, rec.SuggestedModel, string(rec.TaskType),
		rec.Confidence, rec.UserPreferenceRespected, rec.CreatedAt,
	)
	return err
}

func (r *selectionLogRepo) AppendFeedback(ctx context.Context, tx repository.Tx, fb *model.ModelFeedback) error {
	const q = `
INSERT INTO model_feedback (id, model_id, rating, task_type, comment, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		fb.ID, fb.ModelID, fb.Rating, string(fb.TaskType), fb.Comment, fb.CreatedAt,
	)
	return err
}

// SaveStats overwrites the stored counters with the in-memory snapshot. The
// per-task map goes into a jsonb column; it is small and read only at startup.
func (r *selectionLogRepo) SaveStats(ctx context.Context, tx repository.Tx, stats *model.ModelStats) error {
	taskJSON, err := json.Marshal(stats.TaskSuccess)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO model_performance (model_id, requests, successes, latency_ms_sum, task_success, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (model_id) DO UPDATE SET
  requests = EXCLUDED.requests,
  successes = EXCLUDED.successes,
  latency_ms_sum = EXCLUDED.latency_ms_sum,
  task_success = EXCLUDED.task_success,
  updated_at = EXCLUDED.updated_at;
`
	_, err = execSQL(ctx, r.pool, tx, q,
		stats.ModelID, stats.Requests, stats.Successes, stats.LatencyMsum, taskJSON, time.Now(),
	)
	return err
}

func (r *selectionLogRepo) LoadStats(ctx context.Context, tx repository.Tx) ([]*model.ModelStats, error) {
	const q = `
SELECT model_id, requests, successes, latency_ms_sum, task_success, updated_at
  FROM model_performance;
`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ModelStats
	for rows.Next() {
		st := model.NewModelStats("")
		var taskJSON []byte
		if err := rows.Scan(&st.ModelID, &st.Requests, &st.Successes, &st.LatencyMsum, &taskJSON, &st.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		if len(taskJSON) > 0 {
			if err := json.Unmarshal(taskJSON, &st.TaskSuccess); err != nil {
				return nil, domain.ErrReadDatabaseRow
			}
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
