package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the aggregate queries behind the dashboards. Every query is
// bounded: status counts, a single day, or a single month.
type Repository interface {
	OrderCountsByStatus(ctx context.Context, customerID *int64) (map[string]int64, error)
	DeliveryCountToday(ctx context.Context, day time.Time) (int64, error)
	DeliveryCountByStatus(ctx context.Context, supplierID int64, status string) (int64, error)
	ActiveUsersByRole(ctx context.Context) (map[string]int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) OrderCountsByStatus(ctx context.Context, customerID *int64) (map[string]int64, error) {
	query := `SELECT status, COUNT(*) FROM orders GROUP BY status`
	args := []interface{}{}
	if customerID != nil {
		query = `SELECT status, COUNT(*) FROM orders WHERE customer_id = $1 GROUP BY status`
		args = append(args, *customerID)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *repository) DeliveryCountToday(ctx context.Context, day time.Time) (int64, error) {
	start := day.Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM deliveries
		WHERE delivery_date >= $1 AND delivery_date < $2`,
		start, end).Scan(&n)
	return n, err
}

func (r *repository) DeliveryCountByStatus(ctx context.Context, supplierID int64, status string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM deliveries
		WHERE supplier_id = $1 AND status = $2`,
		supplierID, status).Scan(&n)
	return n, err
}

func (r *repository) ActiveUsersByRole(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT role, COUNT(*) FROM users
		WHERE status = 'active'
		GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var role string
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, rows.Err()
}
