package repository

import (
	"context"

	"ai-access-platform/internal/domain/model"
)

// ModelPricingRepository is the port for the model catalog.
type ModelPricingRepository interface {
	Create(ctx context.Context, tx Tx, p *model.ModelPricing) error
	Update(ctx context.Context, tx Tx, p *model.ModelPricing) error
	// GetByModelName returns only active rows; domain.ErrNotFound otherwise.
	GetByModelName(ctx context.Context, tx Tx, name string) (*model.ModelPricing, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.ModelPricing, error)
}
