package order

import (
	"context"
	"errors"

	common "firstpick/internal/domain/common"
)

// Filter narrows the admin listing. Zero value lists everything.
type Filter struct {
	UserID   string
	Statuses []Status

	// Query is a case-insensitive substring matched against the order
	// number, storage id, customer name and email.
	Query string
}

type Page = common.Page
type PageResult = common.PageResult[Order]

// Paging defaults used by adapters.
const (
	DefaultPerPage = 20
	MaxPerPage     = 200
)

// StatusFunc moves the stored order to its next status inside an
// UpdateStatus transaction. Returning an error aborts the update.
type StatusFunc func(current *Order) error

// Repository is the Order Repository. Orders are listed newest first.
type Repository interface {
	// Create assigns o.ID and returns the stored order.
	Create(ctx context.Context, o Order) (Order, error)
	GetByID(ctx context.Context, id string) (Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context, filter Filter, page Page) (PageResult, error)

	// UpdateStatus loads order id, applies fn and persists Status and
	// UpdatedAt atomically.
	UpdateStatus(ctx context.Context, id string, fn StatusFunc) (Order, error)
}

// Standard repository errors
var (
	ErrNotFound = errors.New("order: not found")
	ErrConflict = errors.New("order: conflict")
)

// Matches reports whether o satisfies f. Adapters that cannot push the
// text query down to storage filter with it in memory.
func (f Filter) Matches(o Order) bool {
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if o.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return matchesQuery(o, f.Query)
}
