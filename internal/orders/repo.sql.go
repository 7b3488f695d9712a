package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devine-water/devine-water/internal/platform/db"
	"github.com/devine-water/devine-water/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for orders. Status
// transitions are conditional updates so that concurrent writers serialize at
// the storage layer: the losing writer observes zero affected rows.
type Repository interface {
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]OrderWithDetails, int, error)
	Create(ctx context.Context, o Order) (int64, error)
	// AssignWithDelivery flips pending→assigned and creates the delivery row
	// in one transaction. Returns the delivery id, or false when the order was
	// not in pending.
	AssignWithDelivery(ctx context.Context, orderID, supplierID int64, deliveryDate time.Time) (int64, bool, error)
	// CancelWithDelivery flips a non-terminal order to cancelled and
	// cascade-cancels any linked delivery in one transaction. Returns false
	// when the order was already terminal.
	CancelWithDelivery(ctx context.Context, orderID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const orderColumns = `id, customer_id, quantity, order_date, delivery_date, status, supplier_id, address, notes, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (r *repository) List(ctx context.Context, req ListOrdersRequest) ([]OrderWithDetails, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("o.customer_id = $%d", argPos))
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.SupplierID != nil {
		conditions = append(conditions, fmt.Sprintf("o.supplier_id = $%d", argPos))
		args = append(args, *req.SupplierID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("o.order_date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("o.order_date <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM orders o %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf(`
		SELECT o.id, o.customer_id, o.quantity, o.order_date, o.delivery_date, o.status,
		       o.supplier_id, o.address, o.notes, o.created_at, o.updated_at,
		       c.full_name AS customer_name,
		       s.full_name AS supplier_name
		FROM orders o
		JOIN users c ON o.customer_id = c.id
		LEFT JOIN users s ON o.supplier_id = s.id
		%s
		ORDER BY o.order_date DESC, o.id DESC
		LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []OrderWithDetails
	for rows.Next() {
		var o OrderWithDetails
		if err := rows.Scan(
			&o.ID, &o.CustomerID, &o.Quantity, &o.OrderDate, &o.DeliveryDate, &o.Status,
			&o.SupplierID, &o.Address, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
			&o.CustomerName, &o.SupplierName,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, o)
	}
	return result, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, o Order) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO orders (customer_id, quantity, order_date, delivery_date, status, address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		o.CustomerID, o.Quantity, o.OrderDate, o.DeliveryDate, o.Status, o.Address, o.Notes).Scan(&id)
	return id, err
}

func (r *repository) AssignWithDelivery(ctx context.Context, orderID, supplierID int64, deliveryDate time.Time) (int64, bool, error) {
	var deliveryID int64
	var won bool
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders SET status = 'assigned', supplier_id = $1, updated_at = NOW()
			WHERE id = $2 AND status = 'pending'`,
			supplierID, orderID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		won = true
		return tx.QueryRow(ctx, `
			INSERT INTO deliveries (order_id, supplier_id, delivery_date, status)
			VALUES ($1, $2, $3, 'pending')
			RETURNING id`,
			orderID, supplierID, deliveryDate).Scan(&deliveryID)
	})
	if err != nil {
		return 0, false, err
	}
	return deliveryID, won, nil
}

func (r *repository) CancelWithDelivery(ctx context.Context, orderID int64) (bool, error) {
	var won bool
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders SET status = 'cancelled', updated_at = NOW()
			WHERE id = $1 AND status IN ('pending', 'assigned')`,
			orderID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		won = true
		_, err = tx.Exec(ctx, `
			UPDATE deliveries SET status = 'cancelled', updated_at = NOW()
			WHERE order_id = $1 AND status <> 'completed'`,
			orderID)
		return err
	})
	if err != nil {
		return false, err
	}
	return won, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.Quantity, &o.OrderDate, &o.DeliveryDate, &o.Status, &o.SupplierID, &o.Address, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}
