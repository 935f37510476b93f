package model

import (
	"time"

	"github.com/google/uuid"
)

// ModelPricing is a catalog row for a selectable AI model: what it costs per
// token and how large its context window is. Inactive rows are soft-deleted.
type ModelPricing struct {
	ID                     string
	ModelName              string
	InputTokenPriceMicros  int64
	OutputTokenPriceMicros int64
	ContextWindow          int
	Active                 bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func NewModelPricing(modelName string, inputPriceMicros, outputPriceMicros int64, contextWindow int) *ModelPricing {
	now := time.Now()
	return &ModelPricing{
		ID:                     uuid.NewString(),
		ModelName:              modelName,
		InputTokenPriceMicros:  inputPriceMicros,
		OutputTokenPriceMicros: outputPriceMicros,
		ContextWindow:          contextWindow,
		Active:                 true,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}
