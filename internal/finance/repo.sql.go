package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for the ledger. Both
// tables are append-only; there are no update or delete statements.
type Repository interface {
	InsertIncoming(ctx context.Context, e Incoming) (int64, error)
	InsertIncomingTx(ctx context.Context, tx pgx.Tx, e Incoming) (int64, error)
	InsertOutgoing(ctx context.Context, e Outgoing) (int64, error)
	ListIncoming(ctx context.Context, f ListFilters) ([]Incoming, int, error)
	ListOutgoing(ctx context.Context, f ListFilters) ([]Outgoing, int, error)
	Summarize(ctx context.Context, from, to time.Time) (*Report, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) InsertIncoming(ctx context.Context, e Incoming) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO finance_incoming (source, amount, entry_date, payment_method, counterpart_id, description, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		e.Source, e.Amount, e.EntryDate, e.PaymentMethod, e.CounterpartID, e.Description, e.RecordedBy).Scan(&id)
	return id, err
}

// InsertIncomingTx appends a credit inside a caller-owned transaction. The
// shop sale register uses it to tie the sale and its ledger entry together.
func (r *repository) InsertIncomingTx(ctx context.Context, tx pgx.Tx, e Incoming) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO finance_incoming (source, amount, entry_date, payment_method, counterpart_id, description, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		e.Source, e.Amount, e.EntryDate, e.PaymentMethod, e.CounterpartID, e.Description, e.RecordedBy).Scan(&id)
	return id, err
}

func (r *repository) InsertOutgoing(ctx context.Context, e Outgoing) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO finance_outgoing (category, amount, entry_date, payment_method, counterpart_id, description, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		e.Category, e.Amount, e.EntryDate, e.PaymentMethod, e.CounterpartID, e.Description, e.RecordedBy).Scan(&id)
	return id, err
}

func (r *repository) ListIncoming(ctx context.Context, f ListFilters) ([]Incoming, int, error) {
	whereClause, args, argPos := ledgerFilters(f)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM finance_incoming "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(f)
	query := fmt.Sprintf(`
		SELECT id, source, amount, entry_date, payment_method, counterpart_id, description, recorded_by, created_at
		FROM finance_incoming %s
		ORDER BY entry_date DESC, id DESC
		LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Incoming
	for rows.Next() {
		var e Incoming
		if err := rows.Scan(&e.ID, &e.Source, &e.Amount, &e.EntryDate, &e.PaymentMethod, &e.CounterpartID, &e.Description, &e.RecordedBy, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, e)
	}
	return result, total, rows.Err()
}

func (r *repository) ListOutgoing(ctx context.Context, f ListFilters) ([]Outgoing, int, error) {
	whereClause, args, argPos := ledgerFilters(f)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM finance_outgoing "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(f)
	query := fmt.Sprintf(`
		SELECT id, category, amount, entry_date, payment_method, counterpart_id, description, recorded_by, created_at
		FROM finance_outgoing %s
		ORDER BY entry_date DESC, id DESC
		LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Outgoing
	for rows.Next() {
		var e Outgoing
		if err := rows.Scan(&e.ID, &e.Category, &e.Amount, &e.EntryDate, &e.PaymentMethod, &e.CounterpartID, &e.Description, &e.RecordedBy, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, e)
	}
	return result, total, rows.Err()
}

// Summarize aggregates both sides of the ledger over an indexed date range.
func (r *repository) Summarize(ctx context.Context, from, to time.Time) (*Report, error) {
	report := &Report{
		From:           from,
		To:             to,
		IncomingBySrc:  make(map[IncomingSource]float64),
		OutgoingByCat:  make(map[OutgoingCategory]float64),
		AmountByMethod: make(map[PaymentMethod]float64),
	}

	rows, err := r.pool.Query(ctx, `
		SELECT source, payment_method, SUM(amount)
		FROM finance_incoming
		WHERE entry_date >= $1 AND entry_date <= $2
		GROUP BY source, payment_method`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var source IncomingSource
		var method PaymentMethod
		var sum float64
		if err := rows.Scan(&source, &method, &sum); err != nil {
			return nil, err
		}
		report.TotalIncoming += sum
		report.IncomingBySrc[source] += sum
		report.AmountByMethod[method] += sum
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	outRows, err := r.pool.Query(ctx, `
		SELECT category, SUM(amount)
		FROM finance_outgoing
		WHERE entry_date >= $1 AND entry_date <= $2
		GROUP BY category`, from, to)
	if err != nil {
		return nil, err
	}
	defer outRows.Close()
	for outRows.Next() {
		var category OutgoingCategory
		var sum float64
		if err := outRows.Scan(&category, &sum); err != nil {
			return nil, err
		}
		report.TotalOutgoing += sum
		report.OutgoingByCat[category] += sum
	}
	if err := outRows.Err(); err != nil {
		return nil, err
	}

	report.NetProfit = report.TotalIncoming - report.TotalOutgoing
	return report, nil
}

func ledgerFilters(f ListFilters) (string, []interface{}, int) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if f.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("entry_date >= $%d", argPos))
		args = append(args, *f.DateFrom)
		argPos++
	}
	if f.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("entry_date <= $%d", argPos))
		args = append(args, *f.DateTo)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}
	return whereClause, args, argPos
}

func pageBounds(f ListFilters) (limit, offset int) {
	limit = f.PageSize
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}
