package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for activity logs.
type Repository interface {
	Insert(ctx context.Context, e Entry) error
	List(ctx context.Context, f ListFilters) ([]Entry, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Insert(ctx context.Context, e Entry) error {
	occurredAt := e.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO activity_logs (user_id, action, entity, entity_id, details, ip_address, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.UserID, e.Action, e.Entity, e.EntityID, e.Details, e.IPAddress, occurredAt)
	return err
}

func (r *repository) List(ctx context.Context, f ListFilters) ([]Entry, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if f.ActorID > 0 {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argPos))
		args = append(args, f.ActorID)
		argPos++
	}
	if f.Entity != "" {
		conditions = append(conditions, fmt.Sprintf("entity = $%d", argPos))
		args = append(args, f.Entity)
		argPos++
	}
	if f.Action != "" {
		conditions = append(conditions, fmt.Sprintf("action = $%d", argPos))
		args = append(args, f.Action)
		argPos++
	}
	if !f.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("occurred_at >= $%d", argPos))
		args = append(args, f.From)
		argPos++
	}
	if !f.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("occurred_at <= $%d", argPos))
		args = append(args, f.To)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM activity_logs %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, action, entity, entity_id, details, ip_address, occurred_at
		FROM activity_logs
		%s
		ORDER BY occurred_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)

	limit := f.PageSize
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Entity, &e.EntityID, &e.Details, &e.IPAddress, &e.OccurredAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
