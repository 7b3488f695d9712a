package shopsales

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/devine-water/devine-water/internal/audit"
	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
)

// Service wraps the shop sale register rules.
type Service struct {
	repo      Repository
	unitPrice float64
	auditor   *audit.Recorder
	now       func() time.Time
}

// NewService constructs a new Service. unitPrice is the configured per-unit
// price applied to every sale at record time.
func NewService(repo Repository, unitPrice float64, auditor *audit.Recorder) *Service {
	return &Service{repo: repo, unitPrice: unitPrice, auditor: auditor, now: time.Now}
}

// Record registers a sale. The unit price is resolved server-side and frozen
// on the record; the change is computed, never trusted from the client.
func (s *Service) Record(ctx context.Context, req RecordSaleRequest, actor *shared.Identity) (*Sale, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", httpx.ErrValidation)
	}
	total := float64(req.Quantity) * s.unitPrice
	if req.CashReceived < total {
		return nil, fmt.Errorf("%w: received %.2f, need %.2f", httpx.ErrInsufficientPayment, req.CashReceived, total)
	}

	sale := Sale{
		ShopkeeperID:   actor.UserID,
		Quantity:       req.Quantity,
		UnitPrice:      s.unitPrice,
		TotalAmount:    total,
		CashReceived:   req.CashReceived,
		ChangeReturned: req.CashReceived - total,
		SaleDate:       s.now(),
	}
	id, err := s.repo.CreateWithLedger(ctx, sale)
	if err != nil {
		return nil, fmt.Errorf("record sale: %w", err)
	}
	sale.ID = id

	s.auditor.Record(ctx, audit.Entry{
		UserID:   actor.UserID,
		Action:   audit.ActionCreate,
		Entity:   "ShopSale",
		EntityID: strconv.FormatInt(id, 10),
		Details:  fmt.Sprintf("quantity=%d total=%.2f", req.Quantity, total),
	})
	return &sale, nil
}

// List returns sales scoped to the actor: shopkeepers see their own register,
// admins see everything.
func (s *Service) List(ctx context.Context, f ListFilters, actor *shared.Identity) ([]Sale, shared.Pagination, error) {
	if actor.Role == shared.RoleShopkeeper {
		f.ShopkeeperID = &actor.UserID
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(f.Page, f.PageSize, total), nil
}

// DailySummary aggregates one shopkeeper's day from the sale rows.
func (s *Service) DailySummary(ctx context.Context, shopkeeperID int64, day time.Time, actor *shared.Identity) (*DailySummary, error) {
	if actor.Role == shared.RoleShopkeeper {
		shopkeeperID = actor.UserID
	}
	if shopkeeperID == 0 {
		return nil, fmt.Errorf("%w: shopkeeper_id required", httpx.ErrValidation)
	}

	sales, err := s.repo.SalesForDay(ctx, shopkeeperID, day)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	summary := &DailySummary{
		Date:         day.Truncate(24 * time.Hour),
		ShopkeeperID: shopkeeperID,
		Sales:        sales,
	}
	for _, sale := range sales {
		summary.TotalSales += sale.TotalAmount
		summary.TotalQuantity += sale.Quantity
		summary.NumberOfTransactions++
	}
	return summary, nil
}
