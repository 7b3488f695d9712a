package shopsales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devine-water/devine-water/internal/finance"
	"github.com/devine-water/devine-water/internal/platform/db"
)

// LedgerAppender writes the ledger entry for a sale inside the sale's own
// transaction.
type LedgerAppender interface {
	InsertIncomingTx(ctx context.Context, tx pgx.Tx, e finance.Incoming) (int64, error)
}

// Repository provides PostgreSQL backed persistence for shop sales.
type Repository interface {
	// CreateWithLedger inserts the sale and its finance_incoming entry in one
	// transaction; either both commit or neither does.
	CreateWithLedger(ctx context.Context, s Sale) (int64, error)
	List(ctx context.Context, f ListFilters) ([]Sale, int, error)
	SalesForDay(ctx context.Context, shopkeeperID int64, day time.Time) ([]Sale, error)
}

type repository struct {
	pool   *pgxpool.Pool
	ledger LedgerAppender
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool, ledger LedgerAppender) Repository {
	return &repository{pool: pool, ledger: ledger}
}

func (r *repository) CreateWithLedger(ctx context.Context, s Sale) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO shop_sales (shopkeeper_id, quantity, unit_price, total_amount, cash_received, change_returned, sale_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			s.ShopkeeperID, s.Quantity, s.UnitPrice, s.TotalAmount, s.CashReceived, s.ChangeReturned, s.SaleDate).Scan(&id)
		if err != nil {
			return err
		}
		_, err = r.ledger.InsertIncomingTx(ctx, tx, finance.Incoming{
			Source:        finance.SourceShopSale,
			Amount:        s.TotalAmount,
			EntryDate:     s.SaleDate,
			PaymentMethod: finance.MethodCash,
			CounterpartID: &s.ShopkeeperID,
			Description:   fmt.Sprintf("shop sale #%d", id),
			RecordedBy:    s.ShopkeeperID,
		})
		return err
	})
	return id, err
}

const saleColumns = `id, shopkeeper_id, quantity, unit_price, total_amount, cash_received, change_returned, sale_date, created_at`

func (r *repository) List(ctx context.Context, f ListFilters) ([]Sale, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if f.ShopkeeperID != nil {
		conditions = append(conditions, fmt.Sprintf("shopkeeper_id = $%d", argPos))
		args = append(args, *f.ShopkeeperID)
		argPos++
	}
	if f.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("sale_date >= $%d", argPos))
		args = append(args, *f.DateFrom)
		argPos++
	}
	if f.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("sale_date <= $%d", argPos))
		args = append(args, *f.DateTo)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM shop_sales "+whereClause, args...).Scan(&total); err != nil {
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
		SELECT `+saleColumns+`
		FROM shop_sales %s
		ORDER BY sale_date DESC, id DESC
		LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := scanSales(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *repository) SalesForDay(ctx context.Context, shopkeeperID int64, day time.Time) ([]Sale, error) {
	start := day.Truncate(24 * time.Hour)
	end := start.Add(24*time.Hour - time.Nanosecond)
	rows, err := r.pool.Query(ctx, `
		SELECT `+saleColumns+`
		FROM shop_sales
		WHERE shopkeeper_id = $1 AND sale_date >= $2 AND sale_date <= $3
		ORDER BY sale_date ASC, id ASC`,
		shopkeeperID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSales(rows)
}

func scanSales(rows pgx.Rows) ([]Sale, error) {
	var result []Sale
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.ShopkeeperID, &s.Quantity, &s.UnitPrice, &s.TotalAmount, &s.CashReceived, &s.ChangeReturned, &s.SaleDate, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
