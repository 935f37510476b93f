package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"ai-access-platform/internal/domain"
	"ai-access-platform/internal/domain/model"
	"ai-access-platform/internal/domain/ports/repository"
	"ai-access-platform/internal/infra/logging"
	"ai-access-platform/internal/infra/metrics"
)

// PricingUseCase manages the catalog of routable models and their token
// pricing. The catalog doubles as the source of truth for which models
// the router may pick from.
type PricingUseCase interface {
	Create(ctx context.Context, p *model.ModelPricing) error
	Update(ctx context.Context, p *model.ModelPricing) error
	Deactivate(ctx context.Context, modelName string) error
	GetByModelName(ctx context.Context, modelName string) (*model.ModelPricing, error)
	ListActive(ctx context.Context) ([]*model.ModelPricing, error)
}

type pricingUseCase struct {
	pricing repository.ModelPricingRepository
	log     *zerolog.Logger
}

var _ PricingUseCase = (*pricingUseCase)(nil)

func NewPricingUseCase(pricing repository.ModelPricingRepository, logger *zerolog.Logger) *pricingUseCase {
	return &pricingUseCase{pricing: pricing, log: logger}
}

func (u *pricingUseCase) Create(ctx context.Context, p *model.ModelPricing) error {
	if p == nil || p.ModelName == "" {
		return domain.ErrInvalidArgument
	}
	if err := u.pricing.Create(ctx, repository.NoTX, p); err != nil {
		metrics.IncAdminCommand("pricing_create", "error")
		return err
	}
	metrics.IncAdminCommand("pricing_create", "ok")
	logging.With(ctx, u.log).Info().Str("model", p.ModelName).Msg("model pricing created")
	return nil
}

func (u *pricingUseCase) Update(ctx context.Context, p *model.ModelPricing) error {
	if p == nil || p.ID == "" {
		return domain.ErrInvalidArgument
	}
	if err := u.pricing.Update(ctx, repository.NoTX, p); err != nil {
		metrics.IncAdminCommand("pricing_update", "error")
		return err
	}
	metrics.IncAdminCommand("pricing_update", "ok")
	return nil
}

func (u *pricingUseCase) Deactivate(ctx context.Context, modelName string) error {
	p, err := u.pricing.GetByModelName(ctx, repository.NoTX, modelName)
	if err != nil {
		metrics.IncAdminCommand("pricing_deactivate", "error")
		return err
	}
	p.Active = false
	if err := u.pricing.Update(ctx, repository.NoTX, p); err != nil {
		metrics.IncAdminCommand("pricing_deactivate", "error")
		return err
	}
	metrics.IncAdminCommand("pricing_deactivate", "ok")
	return nil
}

func (u *pricingUseCase) GetByModelName(ctx context.Context, modelName string) (*model.ModelPricing, error) {
	return u.pricing.GetByModelName(ctx, repository.NoTX, modelName)
}

func (u *pricingUseCase) ListActive(ctx context.Context) ([]*model.ModelPricing, error) {
	return u.pricing.ListActive(ctx, repository.NoTX)
}
