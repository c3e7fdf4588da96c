package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	contactdom "firstpick/internal/domain/contact"
)

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// ContactUsecase accepts contact form messages from anyone and lets admins
// read and delete them.
type ContactUsecase struct {
	repo     contactdom.Repository
	identity Identity
	clock    Clock
	log      *zap.Logger
}

func NewContactUsecase(repo contactdom.Repository, identity Identity, log *zap.Logger) *ContactUsecase {
	if identity == nil {
		identity = ContextIdentity{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactUsecase{repo: repo, identity: identity, clock: systemClock{}, log: log}
}

// WithClock is useful for tests.
func (uc *ContactUsecase) WithClock(c Clock) *ContactUsecase {
	if c != nil {
		uc.clock = c
	}
	return uc
}

// Submit stores a message. No sign-in is needed.
func (uc *ContactUsecase) Submit(ctx context.Context, in ContactInput) (contactdom.Submission, error) {
	s, err := contactdom.New(in.Name, in.Email, in.Phone, in.Message, uc.clock.Now())
	if err != nil {
		return contactdom.Submission{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if err := uc.repo.Put(ctx, s); err != nil {
		uc.log.Error("contact submission failed", zap.Error(err))
		return contactdom.Submission{}, persistence("contact.put", err)
	}
	uc.log.Info("contact submission stored", zap.String("submission_id", s.ID))
	return s, nil
}

func (uc *ContactUsecase) List(ctx context.Context) ([]contactdom.Submission, error) {
	if _, err := requireAdmin(ctx, uc.identity); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, persistence("contact.list", err)
	}
	return list, nil
}

func (uc *ContactUsecase) Delete(ctx context.Context, id string) error {
	if _, err := requireAdmin(ctx, uc.identity); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, contactdom.ErrNotFound) {
			return err
		}
		return persistence("contact.delete", err)
	}
	return nil
}
