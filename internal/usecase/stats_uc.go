package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ai-access-platform/internal/domain/ports/repository"
	"ai-access-platform/internal/infra/logging"
)

// PlatformStats is the admin dashboard summary.
type PlatformStats struct {
	TotalUsers     int            `json:"total_users"`
	InactiveUsers  int            `json:"inactive_users"`
	TotalCodes     int            `json:"total_codes"`
	ClaimedCodes   int            `json:"claimed_codes"`
	UsersByStatus  map[string]int `json:"users_by_status"`
	GeneratedAtUTC time.Time      `json:"generated_at"`
}

// StatsUseCase aggregates counters for the admin dashboard.
type StatsUseCase interface {
	Summary(ctx context.Context) (*PlatformStats, error)
}

type statsUseCase struct {
	users  repository.UserRepository
	codes  repository.ActivationCodeRepository
	status repository.AccessStatusRepository
	log    *zerolog.Logger

	inactiveAfter time.Duration
}

var _ StatsUseCase = (*statsUseCase)(nil)

func NewStatsUseCase(
	users repository.UserRepository,
	codes repository.ActivationCodeRepository,
	status repository.AccessStatusRepository,
	logger *zerolog.Logger,
) *statsUseCase {
	return &statsUseCase{
		users:         users,
		codes:         codes,
		status:        status,
		log:           logger,
		inactiveAfter: 30 * 24 * time.Hour,
	}
}

func (u *statsUseCase) Summary(ctx context.Context) (*PlatformStats, error) {
	defer logging.TraceDuration(ctx, u.log, "stats.Summary")()

	out := &PlatformStats{GeneratedAtUTC: time.Now().UTC()}

	var err error
	if out.TotalUsers, err = u.users.CountUsers(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	since := time.Now().Add(-u.inactiveAfter)
	if out.InactiveUsers, err = u.users.CountInactiveUsers(ctx, repository.NoTX, since); err != nil {
		return nil, err
	}
	if out.TotalCodes, err = u.codes.Count(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if out.ClaimedCodes, err = u.codes.CountClaimed(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if out.UsersByStatus, err = u.status.CountByStatus(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	return out, nil
}
