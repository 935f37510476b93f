package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ai-access-platform/internal/domain"
	"ai-access-platform/internal/domain/model"
	"ai-access-platform/internal/domain/ports/repository"
	"ai-access-platform/internal/infra/logging"
	"ai-access-platform/internal/infra/metrics"
)

// DecisionCache holds access decisions keyed by user so that the hot
// check path does not hit Postgres on every request. Implementations
// must tolerate a nil return on miss.
type DecisionCache interface {
	Get(ctx context.Context, userID string) (*model.AccessStatus, error)
	Set(ctx context.Context, status *model.AccessStatus) error
	Invalidate(ctx context.Context, userID string) error
}

// AccessUseCase gates AI features behind activation codes and manages the
// per-user access state machine.
type AccessUseCase interface {
	// Check resolves the effective access decision for a user. Admins are
	// always granted. A user with no state gets a default no-access row.
	Check(ctx context.Context, userID string, isAdmin bool) (*model.AccessStatus, error)
	// Redeem claims an activation code for the user and grants access.
	Redeem(ctx context.Context, userID, code string) (*model.AccessStatus, error)

	GenerateCode(ctx context.Context, adminID, notes string, expiresAt *time.Time) (*model.ActivationCode, error)
	ListCodes(ctx context.Context, offset, limit int) ([]*model.ActivationCode, int, error)
	SuspendCode(ctx context.Context, codeID string) error
	ReactivateCode(ctx context.Context, codeID string) error
	DeleteCode(ctx context.Context, codeID string) error

	BlockUser(ctx context.Context, userID string) error
	UnblockUser(ctx context.Context, userID string) error
	RevokeAccess(ctx context.Context, userID string) error

	// ExpireCodes deactivates codes whose expiry has passed. Returns the
	// number of codes touched.
	ExpireCodes(ctx context.Context) (int, error)
}

type accessUseCase struct {
	codes  repository.ActivationCodeRepository
	status repository.AccessStatusRepository
	users  repository.UserRepository
	tm     repository.TransactionManager
	cache  DecisionCache
	log    *zerolog.Logger
}

var _ AccessUseCase = (*accessUseCase)(nil)

func NewAccessUseCase(
	codes repository.ActivationCodeRepository,
	status repository.AccessStatusRepository,
	users repository.UserRepository,
	tm repository.TransactionManager,
	cache DecisionCache,
	logger *zerolog.Logger,
) *accessUseCase {
	return &accessUseCase{
		codes:  codes,
		status: status,
		users:  users,
		tm:     tm,
		cache:  cache,
		log:    logger,
	}
}

func (u *accessUseCase) Check(ctx context.Context, userID string, isAdmin bool) (*model.AccessStatus, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(ctx, u.log, "access.Check")()

	if isAdmin {
		metrics.IncAccessCheck("admin")
		st := model.NewAccessStatus(userID)
		st.Grant()
		st.Message = "Admin access"
		return st, nil
	}

	if u.cache != nil {
		if st, err := u.cache.Get(ctx, userID); err == nil && st != nil {
			metrics.IncAccessCheck(st.Status)
			return st, nil
		}
	}

	st, err := u.status.FindByUserID(ctx, repository.NoTX, userID)
	if errors.Is(err, domain.ErrNotFound) {
		st = model.NewAccessStatus(userID)
		if saveErr := u.status.Save(ctx, repository.NoTX, st); saveErr != nil {
			return nil, saveErr
		}
	} else if err != nil {
		return nil, err
	}

	u.overlaySuspendedCode(ctx, st)

	if u.cache != nil {
		if err := u.cache.Set(ctx, st); err != nil {
			log.Warn().Err(err).Msg("failed to cache access decision")
		}
	}
	metrics.IncAccessCheck(st.Status)
	return st, nil
}

// overlaySuspendedCode downgrades an active grant when the backing code
// has been deactivated since the status row was written. Lookup errors
// leave the stored decision untouched so a cache or database hiccup does
// not lock users out.
func (u *accessUseCase) overlaySuspendedCode(ctx context.Context, st *model.AccessStatus) {
	if !st.HasAccess || st.IsSuspended || st.IsBlocked {
		return
	}
	code, err := u.codes.FindClaimedByUserID(ctx, repository.NoTX, st.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.With(ctx, u.log).Warn().Err(err).
				Str("user_id", st.UserID).
				Msg("claimed code lookup failed, keeping stored decision")
		}
		return
	}
	if !code.Active {
		st.Suspend()
	}
}

func (u *accessUseCase) Redeem(ctx context.Context, userID, rawCode string) (*model.AccessStatus, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(ctx, u.log, "access.Redeem")()

	code := normalizeCode(rawCode)
	if code == "" {
		metrics.IncActivation("invalid")
		return nil, domain.ErrInvalidArgument
	}

	var st *model.AccessStatus
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(ctx context.Context, tx repository.Tx) error {
		existing, err := u.status.FindByUserID(ctx, tx, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil && existing.IsBlocked {
			return domain.ErrAccessBlocked
		}

		ac, err := u.codes.FindByCode(ctx, tx, code)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCodeNotFound
		}
		if err != nil {
			return err
		}
		if err := ac.Claim(userID, time.Now()); err != nil {
			return err
		}
		if err := u.codes.Save(ctx, tx, ac); err != nil {
			return err
		}

		if existing == nil {
			existing = model.NewAccessStatus(userID)
		}
		existing.Grant()
		if err := u.status.Save(ctx, tx, existing); err != nil {
			return err
		}

		if usr, err := u.users.FindByID(ctx, tx, userID); err == nil {
			usr.HasAIAccess = true
			if err := u.users.Save(ctx, tx, usr); err != nil {
				return err
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		st = existing
		return nil
	})
	if err != nil {
		metrics.IncActivation(activationOutcome(err))
		return nil, err
	}

	u.invalidate(ctx, userID)
	metrics.IncActivation("success")
	log.Info().Str("user_id", userID).Msg("activation code redeemed")
	return st, nil
}

func activationOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		return "already_used"
	case errors.Is(err, domain.ErrCodeDeactivated):
		return "deactivated"
	case errors.Is(err, domain.ErrCodeExpired):
		return "expired"
	case errors.Is(err, domain.ErrAccessBlocked):
		return "blocked"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	default:
		return "error"
	}
}

func (u *accessUseCase) GenerateCode(ctx context.Context, adminID, notes string, expiresAt *time.Time) (*model.ActivationCode, error) {
	defer logging.TraceDuration(ctx, u.log, "access.GenerateCode")()

	// A collision on the unique code column is astronomically unlikely but
	// retrying is cheap.
	for attempt := 0; attempt < 3; attempt++ {
		raw, err := generateActivationCode()
		if err != nil {
			return nil, err
		}
		ac, err := model.NewActivationCode(raw, adminID, notes, expiresAt)
		if err != nil {
			return nil, err
		}
		err = u.codes.Save(ctx, repository.NoTX, ac)
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		metrics.IncAdminCommand("generate_code", "ok")
		return ac, nil
	}
	metrics.IncAdminCommand("generate_code", "error")
	return nil, domain.ErrAlreadyExists
}

func (u *accessUseCase) ListCodes(ctx context.Context, offset, limit int) ([]*model.ActivationCode, int, error) {
	codes, err := u.codes.List(ctx, repository.NoTX, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := u.codes.Count(ctx, repository.NoTX)
	if err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}

func (u *accessUseCase) SuspendCode(ctx context.Context, codeID string) error {
	return u.setCodeActive(ctx, codeID, false, "suspend_code")
}

func (u *accessUseCase) ReactivateCode(ctx context.Context, codeID string) error {
	return u.setCodeActive(ctx, codeID, true, "reactivate_code")
}

// setCodeActive flips a code's active flag and keeps the claimant's
// status row in sync inside the same transaction.
func (u *accessUseCase) setCodeActive(ctx context.Context, codeID string, active bool, command string) error {
	defer logging.TraceDuration(ctx, u.log, "access."+command)()

	var claimant string
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ac, err := u.codes.FindByID(ctx, tx, codeID)
		if err != nil {
			return err
		}
		ac.Active = active
		if err := u.codes.Save(ctx, tx, ac); err != nil {
			return err
		}
		if !ac.Claimed || ac.ClaimedByUserID == nil {
			return nil
		}
		claimant = *ac.ClaimedByUserID
		st, err := u.status.FindByUserID(ctx, tx, claimant)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}
		if active {
			st.Unsuspend()
		} else {
			st.Suspend()
		}
		return u.status.Save(ctx, tx, st)
	})
	if err != nil {
		metrics.IncAdminCommand(command, "error")
		return err
	}
	if claimant != "" {
		u.invalidate(ctx, claimant)
	}
	metrics.IncAdminCommand(command, "ok")
	return nil
}

func (u *accessUseCase) DeleteCode(ctx context.Context, codeID string) error {
	defer logging.TraceDuration(ctx, u.log, "access.DeleteCode")()

	ac, err := u.codes.FindByID(ctx, repository.NoTX, codeID)
	if err != nil {
		metrics.IncAdminCommand("delete_code", "error")
		return err
	}
	if ac.Claimed {
		metrics.IncAdminCommand("delete_code", "claimed")
		return domain.ErrCodeClaimed
	}
	if err := u.codes.Delete(ctx, repository.NoTX, codeID); err != nil {
		metrics.IncAdminCommand("delete_code", "error")
		return err
	}
	metrics.IncAdminCommand("delete_code", "ok")
	return nil
}

func (u *accessUseCase) BlockUser(ctx context.Context, userID string) error {
	return u.mutateStatus(ctx, userID, "block_user", (*model.AccessStatus).Block)
}

func (u *accessUseCase) UnblockUser(ctx context.Context, userID string) error {
	return u.mutateStatus(ctx, userID, "unblock_user", (*model.AccessStatus).Unblock)
}

func (u *accessUseCase) RevokeAccess(ctx context.Context, userID string) error {
	return u.mutateStatus(ctx, userID, "revoke_access", (*model.AccessStatus).Revoke)
}

func (u *accessUseCase) mutateStatus(ctx context.Context, userID, command string, mutate func(*model.AccessStatus)) error {
	defer logging.TraceDuration(ctx, u.log, "access."+command)()

	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		st, err := u.status.FindByUserID(ctx, tx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			st = model.NewAccessStatus(userID)
		} else if err != nil {
			return err
		}
		mutate(st)
		if err := u.status.Save(ctx, tx, st); err != nil {
			return err
		}
		if usr, err := u.users.FindByID(ctx, tx, userID); err == nil {
			usr.HasAIAccess = st.HasAccess
			return u.users.Save(ctx, tx, usr)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		metrics.IncAdminCommand(command, "error")
		return err
	}
	u.invalidate(ctx, userID)
	metrics.IncAdminCommand(command, "ok")
	return nil
}

func (u *accessUseCase) ExpireCodes(ctx context.Context) (int, error) {
	n, err := u.codes.DeactivateExpired(ctx, repository.NoTX, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.AddCodesExpired(n)
		logging.With(ctx, u.log).Info().Int("count", n).Msg("expired activation codes deactivated")
	}
	return n, nil
}

func (u *accessUseCase) invalidate(ctx context.Context, userID string) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Invalidate(ctx, userID); err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate access decision cache")
	}
}
