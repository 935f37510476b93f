package repository

import (
	"context"

	"ai-access-platform/internal/domain/model"
)

// SelectionLogRepository records routing decisions, feedback, and the
// persisted model performance counters.
type SelectionLogRepository interface {
	AppendSelection(ctx context.Context, tx Tx, rec *model.SelectionRecord) error
	AppendFeedback(ctx context.Context, tx Tx, fb *model.ModelFeedback) error
	// SaveStats upserts one model's counters (overwrite semantics).
	SaveStats(ctx context.Context, tx Tx, stats *model.ModelStats) error
	LoadStats(ctx context.Context, tx Tx) ([]*model.ModelStats, error)
}
