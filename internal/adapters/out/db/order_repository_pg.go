// Package db holds the PostgreSQL adapters.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	billingdom "firstpick/internal/domain/billing"
	common "firstpick/internal/domain/common"
	orderdom "firstpick/internal/domain/order"
)

// OrderRepositoryPG is the PostgreSQL implementation of order.Repository.
type OrderRepositoryPG struct {
	DB *sql.DB
}

func NewOrderRepositoryPG(db *sql.DB) *OrderRepositoryPG {
	return &OrderRepositoryPG{DB: db}
}

const orderColumns = `id, order_number, user_id, billing, items, total_amount, status, created_at, updated_at`

// ========================
// RepositoryPort impl
// ========================

func (r *OrderRepositoryPG) Create(ctx context.Context, o orderdom.Order) (orderdom.Order, error) {
	if strings.TrimSpace(o.ID) == "" {
		o.ID = uuid.NewString()
	}
	billing, items, err := encodeOrderJSON(o)
	if err != nil {
		return orderdom.Order{}, err
	}

	// created_at and updated_at take the column defaults
	const q = `
INSERT INTO orders (id, order_number, user_id, billing, items, total_amount, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at`
	err = r.DB.QueryRowContext(ctx, q,
		o.ID, o.OrderNumber, o.UserID, billing, items, o.TotalAmount, string(o.Status),
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return orderdom.Order{}, orderdom.ErrConflict
		}
		return orderdom.Order{}, err
	}
	o.CreatedAt, o.UpdatedAt = o.CreatedAt.UTC(), o.UpdatedAt.UTC()
	return o, nil
}

func (r *OrderRepositoryPG) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return orderdom.Order{}, orderdom.ErrNotFound
	}

	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.DB.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orderdom.Order{}, orderdom.ErrNotFound
		}
		return orderdom.Order{}, err
	}
	return o, nil
}

func (r *OrderRepositoryPG) ListByUser(ctx context.Context, userID string) ([]orderdom.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, q, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []orderdom.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OrderRepositoryPG) List(ctx context.Context, filter orderdom.Filter, page orderdom.Page) (orderdom.PageResult, error) {
	where, args := buildOrderWhere(filter)
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders `+whereSQL, args...).Scan(&total); err != nil {
		return orderdom.PageResult{}, err
	}

	number, perPage, offset := common.NormalizePage(page.Number, page.PerPage, orderdom.DefaultPerPage, orderdom.MaxPerPage)
	q := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		orderColumns, whereSQL, perPage, offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return orderdom.PageResult{}, err
	}
	defer rows.Close()

	items := []orderdom.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return orderdom.PageResult{}, err
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return orderdom.PageResult{}, err
	}

	return orderdom.PageResult{
		Items:      items,
		TotalCount: total,
		TotalPages: common.ComputeTotalPages(total, perPage),
		Page:       number,
		PerPage:    perPage,
	}, nil
}

// UpdateStatus locks the row, applies fn to it and writes the status back.
func (r *OrderRepositoryPG) UpdateStatus(ctx context.Context, id string, fn orderdom.StatusFunc) (out orderdom.Order, err error) {
	id = strings.TrimSpace(id)
	if _, perr := uuid.Parse(id); perr != nil {
		return orderdom.Order{}, orderdom.ErrNotFound
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return orderdom.Order{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cur, err := scanOrder(tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orderdom.Order{}, orderdom.ErrNotFound
		}
		return orderdom.Order{}, err
	}
	if err = fn(&cur); err != nil {
		return orderdom.Order{}, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, id, string(cur.Status), cur.UpdatedAt.UTC()); err != nil {
		return orderdom.Order{}, err
	}
	if err = tx.Commit(); err != nil {
		return orderdom.Order{}, err
	}
	return cur, nil
}

// ========================
// Helpers
// ========================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(s rowScanner) (orderdom.Order, error) {
	var (
		o          orderdom.Order
		status     string
		billingRaw []byte
		itemsRaw   []byte
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := s.Scan(&o.ID, &o.OrderNumber, &o.UserID, &billingRaw, &itemsRaw, &o.TotalAmount, &status, &createdAt, &updatedAt); err != nil {
		return orderdom.Order{}, err
	}

	var b billingdom.Details
	if err := json.Unmarshal(billingRaw, &b); err != nil {
		return orderdom.Order{}, fmt.Errorf("order %s: billing: %w", o.ID, err)
	}
	var items []orderdom.Item
	if err := json.Unmarshal(itemsRaw, &items); err != nil {
		return orderdom.Order{}, fmt.Errorf("order %s: items: %w", o.ID, err)
	}

	o.Billing = b
	o.Items = items
	o.Status = orderdom.Status(status)
	o.CreatedAt = createdAt.UTC()
	o.UpdatedAt = updatedAt.UTC()
	return o, nil
}

func encodeOrderJSON(o orderdom.Order) ([]byte, []byte, error) {
	billing, err := json.Marshal(o.Billing)
	if err != nil {
		return nil, nil, err
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, nil, err
	}
	return billing, items, nil
}

func buildOrderWhere(f orderdom.Filter) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	if uid := strings.TrimSpace(f.UserID); uid != "" {
		args = append(args, uid)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if len(f.Statuses) > 0 {
		sts := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			sts = append(sts, string(s))
		}
		args = append(args, pq.Array(sts))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(order_number ILIKE $%[1]d OR id::text ILIKE $%[1]d OR billing->>'fullName' ILIKE $%[1]d OR billing->>'email' ILIKE $%[1]d)", n))
	}
	return where, args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
