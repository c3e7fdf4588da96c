package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	orderdom "firstpick/internal/domain/order"
)

// OrderUsecase serves order history and the admin status workflow.
type OrderUsecase struct {
	repo     orderdom.Repository
	identity Identity
	clock    Clock
	log      *zap.Logger

	// strict enables the transition table for SetStatus.
	strict bool
}

func NewOrderUsecase(repo orderdom.Repository, identity Identity, strictTransitions bool, log *zap.Logger) *OrderUsecase {
	if identity == nil {
		identity = ContextIdentity{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderUsecase{repo: repo, identity: identity, clock: systemClock{}, strict: strictTransitions, log: log}
}

// WithClock is useful for tests.
func (uc *OrderUsecase) WithClock(c Clock) *OrderUsecase {
	if c != nil {
		uc.clock = c
	}
	return uc
}

// ListMine returns the current user's orders, newest first.
func (uc *OrderUsecase) ListMine(ctx context.Context) ([]orderdom.Order, error) {
	uid, err := requireUser(ctx, uc.identity)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByUser(ctx, uid)
	if err != nil {
		return nil, persistence("order.listByUser", err)
	}
	return list, nil
}

// Get returns one order. Non-admins only see their own orders; anything
// else reads as not found.
func (uc *OrderUsecase) Get(ctx context.Context, id string) (orderdom.Order, error) {
	uid, err := requireUser(ctx, uc.identity)
	if err != nil {
		return orderdom.Order{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return orderdom.Order{}, fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}

	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, orderdom.ErrNotFound) {
			return orderdom.Order{}, err
		}
		return orderdom.Order{}, persistence("order.get", err)
	}
	if o.UserID != uid && !uc.identity.IsAdmin(ctx) {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, nil
}

// ListAll is the admin order console listing.
func (uc *OrderUsecase) ListAll(ctx context.Context, filter orderdom.Filter, page orderdom.Page) (orderdom.PageResult, error) {
	if _, err := requireAdmin(ctx, uc.identity); err != nil {
		return orderdom.PageResult{}, err
	}
	res, err := uc.repo.List(ctx, filter, page)
	if err != nil {
		return orderdom.PageResult{}, persistence("order.list", err)
	}
	return res, nil
}

// SetStatus moves an order to status (admin only) and returns the stored
// record. Unknown status names are rejected; edges are only checked when
// strict transitions are enabled.
func (uc *OrderUsecase) SetStatus(ctx context.Context, id string, status string) (orderdom.Order, error) {
	admin, err := requireAdmin(ctx, uc.identity)
	if err != nil {
		return orderdom.Order{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return orderdom.Order{}, fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	next, err := orderdom.ParseStatus(status)
	if err != nil {
		return orderdom.Order{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	now := uc.clock.Now()
	o, err := uc.repo.UpdateStatus(ctx, id, func(cur *orderdom.Order) error {
		return cur.SetStatus(next, uc.strict, now)
	})
	if err != nil {
		switch {
		case errors.Is(err, orderdom.ErrNotFound):
			return orderdom.Order{}, err
		case errors.Is(err, orderdom.ErrInvalidTransition), errors.Is(err, orderdom.ErrInvalidStatus):
			return orderdom.Order{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		uc.log.Error("order status update failed", zap.String("order_id", id), zap.Error(err))
		return orderdom.Order{}, persistence("order.updateStatus", err)
	}

	uc.log.Info("order status changed",
		zap.String("order_id", id),
		zap.String("status", string(next)),
		zap.String("by", admin),
	)
	return o, nil
}
