package deliveries

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

// Repository provides PostgreSQL backed persistence for deliveries. Status
// transitions are conditional updates, same as orders: concurrent writers
// serialize at the storage layer.
type Repository interface {
	Get(ctx context.Context, id int64) (*Delivery, error)
	List(ctx context.Context, f ListFilters) ([]DeliveryWithDetails, int, error)
	// Start flips pending→in_progress. Returns false when the delivery was not
	// pending.
	Start(ctx context.Context, id int64, notes string) (bool, error)
	// Complete flips pending or in_progress→completed, stamps completed_at,
	// and marks the parent order delivered in one transaction. Returns false
	// when the delivery was already terminal.
	Complete(ctx context.Context, id int64, notes string, completedAt time.Time) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const deliveryColumns = `id, order_id, supplier_id, delivery_date, status, notes, completed_at, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Delivery, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`, id)
	var d Delivery
	err := row.Scan(&d.ID, &d.OrderID, &d.SupplierID, &d.DeliveryDate, &d.Status, &d.Notes, &d.CompletedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repository) List(ctx context.Context, f ListFilters) ([]DeliveryWithDetails, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if f.SupplierID != nil {
		conditions = append(conditions, fmt.Sprintf("d.supplier_id = $%d", argPos))
		args = append(args, *f.SupplierID)
		argPos++
	}
	if f.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("o.customer_id = $%d", argPos))
		args = append(args, *f.CustomerID)
		argPos++
	}
	if f.Status != nil {
		conditions = append(conditions, fmt.Sprintf("d.status = $%d", argPos))
		args = append(args, *f.Status)
		argPos++
	}
	if f.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("d.delivery_date >= $%d", argPos))
		args = append(args, *f.DateFrom)
		argPos++
	}
	if f.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("d.delivery_date <= $%d", argPos))
		args = append(args, *f.DateTo)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM deliveries d JOIN orders o ON d.order_id = o.id %s`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.PageSize
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf(`
		SELECT d.id, d.order_id, d.supplier_id, d.delivery_date, d.status, d.notes,
		       d.completed_at, d.created_at, d.updated_at,
		       o.customer_id, c.full_name, o.address, o.quantity, s.full_name
		FROM deliveries d
		JOIN orders o ON d.order_id = o.id
		JOIN users c ON o.customer_id = c.id
		JOIN users s ON d.supplier_id = s.id
		%s
		ORDER BY d.delivery_date DESC, d.id DESC
		LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []DeliveryWithDetails
	for rows.Next() {
		var d DeliveryWithDetails
		if err := rows.Scan(
			&d.ID, &d.OrderID, &d.SupplierID, &d.DeliveryDate, &d.Status, &d.Notes,
			&d.CompletedAt, &d.CreatedAt, &d.UpdatedAt,
			&d.CustomerID, &d.CustomerName, &d.Address, &d.Quantity, &d.SupplierName,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, d)
	}
	return result, total, rows.Err()
}

func (r *repository) Start(ctx context.Context, id int64, notes string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE deliveries SET status = 'in_progress', notes = COALESCE(NULLIF($2, ''), notes), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		id, notes)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repository) Complete(ctx context.Context, id int64, notes string, completedAt time.Time) (bool, error) {
	var won bool
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var orderID int64
		err := tx.QueryRow(ctx, `
			UPDATE deliveries
			SET status = 'completed', notes = COALESCE(NULLIF($2, ''), notes),
			    completed_at = $3, updated_at = NOW()
			WHERE id = $1 AND status IN ('pending', 'in_progress')
			RETURNING order_id`,
			id, notes, completedAt).Scan(&orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		won = true
		_, err = tx.Exec(ctx, `
			UPDATE orders SET status = 'delivered', updated_at = NOW()
			WHERE id = $1 AND status = 'assigned'`,
			orderID)
		return err
	})
	if err != nil {
		return false, err
	}
	return won, nil
}
