package firestore

import (
	"context"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	common "firstpick/internal/domain/common"
	orderdom "firstpick/internal/domain/order"
)

// OrderRepositoryFS implements order.Repository using Firestore.
//
// - collection: orders
// - docId: auto id (order.ID)
// - orderId field: display order number
type OrderRepositoryFS struct {
	Client *firestore.Client
}

func NewOrderRepositoryFS(client *firestore.Client) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client}
}

func (r *OrderRepositoryFS) ordersCol() *firestore.CollectionRef {
	return r.Client.Collection("orders")
}

// ========================
// RepositoryPort impl
// ========================

func (r *OrderRepositoryFS) Create(ctx context.Context, o orderdom.Order) (orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return orderdom.Order{}, errNilClient
	}

	var ref *firestore.DocumentRef
	if id := strings.TrimSpace(o.ID); id != "" {
		ref = r.ordersCol().Doc(id)
	} else {
		ref = r.ordersCol().NewDoc()
	}
	o.ID = ref.ID

	wr, err := ref.Create(ctx, orderToDoc(o))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return orderdom.Order{}, orderdom.ErrConflict
		}
		return orderdom.Order{}, err
	}
	// serverTimestamp fields resolve to the commit time
	o.CreatedAt = wr.UpdateTime.UTC()
	o.UpdatedAt = o.CreatedAt
	return o, nil
}

func (r *OrderRepositoryFS) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return orderdom.Order{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return orderdom.Order{}, orderdom.ErrNotFound
	}

	snap, err := r.ordersCol().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return orderdom.Order{}, orderdom.ErrNotFound
		}
		return orderdom.Order{}, err
	}
	return docToOrder(snap)
}

// ListByUser filters by userId only and sorts in memory, so no composite
// index is needed.
func (r *OrderRepositoryFS) ListByUser(ctx context.Context, userID string) ([]orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return []orderdom.Order{}, nil
	}

	list, err := collect(ctx, r.ordersCol().Where("userId", "==", uid), docToOrder)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(list)
	return list, nil
}

// List pushes userId/status filters down to Firestore; the free-text query
// and paging are applied in memory.
func (r *OrderRepositoryFS) List(ctx context.Context, filter orderdom.Filter, page orderdom.Page) (orderdom.PageResult, error) {
	if r == nil || r.Client == nil {
		return orderdom.PageResult{}, errNilClient
	}

	q := r.ordersCol().Query
	if uid := strings.TrimSpace(filter.UserID); uid != "" {
		q = q.Where("userId", "==", uid)
	}
	if len(filter.Statuses) > 0 {
		sts := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			sts = append(sts, string(s))
		}
		q = q.Where("status", "in", sts)
	}

	all, err := collect(ctx, q, docToOrder)
	if err != nil {
		return orderdom.PageResult{}, err
	}

	matched := make([]orderdom.Order, 0, len(all))
	for _, o := range all {
		if filter.Matches(o) {
			matched = append(matched, o)
		}
	}
	sortNewestFirst(matched)
	return common.Paginate(matched, page, orderdom.DefaultPerPage, orderdom.MaxPerPage), nil
}

func (r *OrderRepositoryFS) UpdateStatus(ctx context.Context, id string, fn orderdom.StatusFunc) (orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return orderdom.Order{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	ref := r.ordersCol().Doc(id)

	var out orderdom.Order
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return orderdom.ErrNotFound
			}
			return err
		}
		cur, err := docToOrder(snap)
		if err != nil {
			return err
		}
		if err := fn(&cur); err != nil {
			return err
		}
		out = cur

		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(cur.Status)},
			{Path: "updatedAt", Value: cur.UpdatedAt.UTC()},
		})
	})
	if err != nil {
		return orderdom.Order{}, err
	}
	return out, nil
}

func sortNewestFirst(list []orderdom.Order) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
