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
)

// UserUseCase keeps a local record of everyone who authenticated against
// the API, mirrored from the identity token on each request.
type UserUseCase interface {
	// RegisterOrFetch upserts a user from verified token claims and
	// returns the stored record.
	RegisterOrFetch(ctx context.Context, id, email string, isAdmin bool) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]*model.User, int, error)
	CountInactiveSince(ctx context.Context, since time.Time) (int, error)
}

type userUseCase struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

var _ UserUseCase = (*userUseCase)(nil)

func NewUserUseCase(users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUseCase {
	return &userUseCase{users: users, tm: tm, log: logger}
}

func (u *userUseCase) RegisterOrFetch(ctx context.Context, id, email string, isAdmin bool) (*model.User, error) {
	defer logging.TraceDuration(ctx, u.log, "user.RegisterOrFetch")()

	var out *model.User
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.users.FindByID(ctx, tx, id)
		if errors.Is(err, domain.ErrNotFound) {
			usr, err = model.NewUser(id, email)
			if err != nil {
				return err
			}
			usr.IsAdmin = isAdmin
			logging.With(ctx, u.log).Info().Str("user_id", id).Msg("new user registered")
		} else if err != nil {
			return err
		} else {
			usr.Email = email
			usr.IsAdmin = isAdmin
			usr.Touch()
		}
		if err := u.users.Save(ctx, tx, usr); err != nil {
			return err
		}
		out = usr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *userUseCase) GetByID(ctx context.Context, id string) (*model.User, error) {
	return u.users.FindByID(ctx, repository.NoTX, id)
}

func (u *userUseCase) List(ctx context.Context, offset, limit int) ([]*model.User, int, error) {
	users, err := u.users.List(ctx, repository.NoTX, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := u.users.CountUsers(ctx, repository.NoTX)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (u *userUseCase) CountInactiveSince(ctx context.Context, since time.Time) (int, error) {
	return u.users.CountInactiveUsers(ctx, repository.NoTX, since)
}
