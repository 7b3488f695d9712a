package routeplan

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

// Repository provides PostgreSQL backed persistence for planned routes.
type Repository interface {
	Get(ctx context.Context, id int64) (*Route, error)
	List(ctx context.Context, f ListFilters) ([]Route, int, error)
	// Create inserts the route and its ordered stops in one transaction.
	Create(ctx context.Context, route Route) (int64, error)
	// HasOpenRoute reports whether the supplier already has a non-completed
	// route on the given date.
	HasOpenRoute(ctx context.Context, supplierID int64, date time.Time) (bool, error)
	// Advance flips the route from the given status to the next one. Returns
	// false when the route was not in that status.
	Advance(ctx context.Context, id int64, from, to RouteStatus) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (*Route, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, route_date, supplier_id, status, created_at, updated_at
		FROM routes WHERE id = $1`, id)
	var route Route
	err := row.Scan(&route.ID, &route.RouteDate, &route.SupplierID, &route.Status, &route.CreatedAt, &route.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	stops, err := r.stopsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	route.Stops = stops[id]
	if route.Stops == nil {
		route.Stops = []Stop{}
	}
	return &route, nil
}

func (r *repository) List(ctx context.Context, f ListFilters) ([]Route, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if f.SupplierID != nil {
		conditions = append(conditions, fmt.Sprintf("supplier_id = $%d", argPos))
		args = append(args, *f.SupplierID)
		argPos++
	}
	if f.Date != nil {
		conditions = append(conditions, fmt.Sprintf("route_date = $%d", argPos))
		args = append(args, *f.Date)
		argPos++
	}
	if f.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *f.Status)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM routes "+whereClause, args...).Scan(&total); err != nil {
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
		SELECT id, route_date, supplier_id, status, created_at, updated_at
		FROM routes %s
		ORDER BY route_date DESC, id DESC
		LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var routes []Route
	var ids []int64
	for rows.Next() {
		var route Route
		if err := rows.Scan(&route.ID, &route.RouteDate, &route.SupplierID, &route.Status, &route.CreatedAt, &route.UpdatedAt); err != nil {
			return nil, 0, err
		}
		routes = append(routes, route)
		ids = append(ids, route.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		stops, err := r.stopsFor(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range routes {
			routes[i].Stops = stops[routes[i].ID]
			if routes[i].Stops == nil {
				routes[i].Stops = []Stop{}
			}
		}
	}
	return routes, total, nil
}

func (r *repository) Create(ctx context.Context, route Route) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO routes (route_date, supplier_id, status)
			VALUES ($1, $2, $3)
			RETURNING id`,
			route.RouteDate, route.SupplierID, route.Status).Scan(&id)
		if err != nil {
			return err
		}
		for _, stop := range route.Stops {
			if _, err := tx.Exec(ctx, `
				INSERT INTO route_stops (route_id, customer_id, address, time_slot, stop_order)
				VALUES ($1, $2, $3, $4, $5)`,
				id, stop.CustomerID, stop.Address, stop.TimeSlot, stop.StopOrder); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

func (r *repository) HasOpenRoute(ctx context.Context, supplierID int64, date time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM routes
			WHERE supplier_id = $1 AND route_date = $2 AND status <> 'completed'
		)`, supplierID, date).Scan(&exists)
	return exists, err
}

func (r *repository) Advance(ctx context.Context, id int64, from, to RouteStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE routes SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repository) stopsFor(ctx context.Context, routeIDs []int64) (map[int64][]Stop, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, route_id, customer_id, address, time_slot, stop_order
		FROM route_stops
		WHERE route_id = ANY($1)
		ORDER BY route_id, stop_order`, routeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stops := make(map[int64][]Stop)
	for rows.Next() {
		var routeID int64
		var s Stop
		if err := rows.Scan(&s.ID, &routeID, &s.CustomerID, &s.Address, &s.TimeSlot, &s.StopOrder); err != nil {
			return nil, err
		}
		stops[routeID] = append(stops[routeID], s)
	}
	return stops, rows.Err()
}
