package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	userdom "firstpick/internal/domain/user"
)

// ProfileUsecase reads and edits the current user's profile document.
type ProfileUsecase struct {
	repo     userdom.Repository
	identity Identity
	clock    Clock
	log      *zap.Logger
}

func NewProfileUsecase(repo userdom.Repository, identity Identity, log *zap.Logger) *ProfileUsecase {
	if identity == nil {
		identity = ContextIdentity{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileUsecase{repo: repo, identity: identity, clock: systemClock{}, log: log}
}

// WithClock is useful for tests.
func (uc *ProfileUsecase) WithClock(c Clock) *ProfileUsecase {
	if c != nil {
		uc.clock = c
	}
	return uc
}

// Get returns userdom.ErrNotFound until the profile has been saved once.
func (uc *ProfileUsecase) Get(ctx context.Context) (userdom.Profile, error) {
	uid, err := requireUser(ctx, uc.identity)
	if err != nil {
		return userdom.Profile{}, err
	}
	p, err := uc.repo.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, userdom.ErrNotFound) {
			return userdom.Profile{}, err
		}
		return userdom.Profile{}, persistence("user.get", err)
	}
	return p, nil
}

// SetUsername creates the profile on first use. The stored email follows
// the verified token when it carries one.
func (uc *ProfileUsecase) SetUsername(ctx context.Context, username string) (userdom.Profile, error) {
	uid, err := requireUser(ctx, uc.identity)
	if err != nil {
		return userdom.Profile{}, err
	}
	email := EmailFromContext(ctx)
	now := uc.clock.Now()

	p, err := uc.repo.Save(ctx, uid, func(p *userdom.Profile) error {
		if email != "" {
			p.Email = email
		}
		return p.SetUsername(username, now)
	})
	if err != nil {
		if errors.Is(err, userdom.ErrInvalidUsername) {
			return userdom.Profile{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		uc.log.Error("profile save failed", zap.String("user_id", uid), zap.Error(err))
		return userdom.Profile{}, persistence("user.save", err)
	}
	return p, nil
}
