package orders

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
)

const uniqueViolation = "23505"

const orderColumns = `id, customer_id, customer_name, order_text, requested_at,
	pickup_start, pickup_end, confirmed_pickup_at, status, created_at, updated_at`

// OrderRepository is the Postgres Store. Mutations for one customer are
// serialized with a transaction-scoped advisory lock on the customer id; the
// partial unique index on active orders backs the invariant up.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var confirmed sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.CustomerName,
		&order.OrderText,
		&order.RequestedAt,
		&order.PickupWindow.Start,
		&order.PickupWindow.End,
		&confirmed,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if confirmed.Valid {
		at := confirmed.Time
		order.ConfirmedPickupAt = &at
	}
	return order, nil
}

func findActive(ctx context.Context, q rowQueryer, customerID string, forUpdate bool) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1 AND status IN ('pending', 'confirmed')
		ORDER BY created_at DESC
		LIMIT 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	order, err := scanOrder(q.QueryRowContext(ctx, query, customerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return order, err
}

func lockCustomer(ctx context.Context, tx *sql.Tx, customerID string) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, customerID)
	return err
}

func (r *OrderRepository) FindActiveByCustomer(ctx context.Context, customerID string) (*domain.Order, error) {
	order, err := findActive(ctx, r.db, customerID, false)
	if err != nil {
		return nil, domain.NewStorageError("find active order", err)
	}
	return order, nil
}

func (r *OrderRepository) CreateIfAbsent(ctx context.Context, customerID string, build func() domain.Order) (CreateResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return CreateResult{}, domain.NewStorageError("begin create", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockCustomer(ctx, tx, customerID); err != nil {
		return CreateResult{}, domain.NewStorageError("lock customer", err)
	}

	existing, err := findActive(ctx, tx, customerID, false)
	if err != nil {
		return CreateResult{}, domain.NewStorageError("find active order", err)
	}
	if existing != nil {
		return CreateResult{Order: *existing, Created: false}, nil
	}

	order := prepareNew(build(), customerID, uuid.New().String())

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, order.ID, order.CustomerID, order.CustomerName, order.OrderText, order.RequestedAt,
		order.PickupWindow.Start, order.PickupWindow.End, nullTime(order.ConfirmedPickupAt),
		order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			_ = tx.Rollback()
			return r.existingAfterConflict(ctx, customerID)
		}
		return CreateResult{}, domain.NewStorageError("insert order", err)
	}

	if err := tx.Commit(); err != nil {
		return CreateResult{}, domain.NewStorageError("commit create", err)
	}
	return CreateResult{Order: order, Created: true}, nil
}

// existingAfterConflict resolves a lost race against a writer that does not
// take the advisory lock.
func (r *OrderRepository) existingAfterConflict(ctx context.Context, customerID string) (CreateResult, error) {
	existing, err := r.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		return CreateResult{}, err
	}
	if existing == nil {
		return CreateResult{}, domain.NewStorageError("insert order", errors.New("active order conflict without active order"))
	}
	return CreateResult{Order: *existing, Created: false}, nil
}

func (r *OrderRepository) ConfirmPickup(ctx context.Context, customerID string, confirmedAt time.Time) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.NewStorageError("begin confirm", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockCustomer(ctx, tx, customerID); err != nil {
		return nil, domain.NewStorageError("lock customer", err)
	}

	active, err := findActive(ctx, tx, customerID, true)
	if err != nil {
		return nil, domain.NewStorageError("find active order", err)
	}
	if active == nil {
		return nil, nil
	}

	order, err := scanOrder(tx.QueryRowContext(ctx, `
		UPDATE orders
		SET confirmed_pickup_at = $2, status = 'confirmed', updated_at = NOW()
		WHERE id = $1
		RETURNING `+orderColumns,
		active.ID, confirmedAt))
	if err != nil {
		return nil, domain.NewStorageError("confirm pickup", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewStorageError("commit confirm", err)
	}
	return order, nil
}

// MarkSent moves a confirmed order to sent. Orders in any other status are
// returned unchanged; a missing order yields nil.
func (r *OrderRepository) MarkSent(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET status = 'sent', updated_at = NOW()
		WHERE id = $1 AND status = 'confirmed'
		RETURNING `+orderColumns,
		orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return r.GetByID(ctx, orderID)
	}
	if err != nil {
		return nil, domain.NewStorageError("mark sent", err)
	}
	return order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("get order", err)
	}
	return order, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, domain.NewStorageError("list orders", err)
	}
	defer func() { _ = rows.Close() }()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan order", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list orders", err)
	}
	return orders, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
