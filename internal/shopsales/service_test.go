package shopsales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devine-water/devine-water/internal/audit"
	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
)

type stubRepo struct {
	sales []Sale
}

func (s *stubRepo) CreateWithLedger(_ context.Context, sale Sale) (int64, error) {
	sale.ID = int64(len(s.sales) + 1)
	s.sales = append(s.sales, sale)
	return sale.ID, nil
}

func (s *stubRepo) List(_ context.Context, f ListFilters) ([]Sale, int, error) {
	var out []Sale
	for _, sale := range s.sales {
		if f.ShopkeeperID != nil && sale.ShopkeeperID != *f.ShopkeeperID {
			continue
		}
		out = append(out, sale)
	}
	return out, len(out), nil
}

func (s *stubRepo) SalesForDay(_ context.Context, shopkeeperID int64, day time.Time) ([]Sale, error) {
	start := day.Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)
	var out []Sale
	for _, sale := range s.sales {
		if sale.ShopkeeperID != shopkeeperID {
			continue
		}
		if sale.SaleDate.Before(start) || !sale.SaleDate.Before(end) {
			continue
		}
		out = append(out, sale)
	}
	return out, nil
}

func newService(repo Repository, unitPrice float64) *Service {
	var auditor *audit.Recorder
	return NewService(repo, unitPrice, auditor)
}

func shopkeeper() *shared.Identity {
	return &shared.Identity{UserID: 5, Role: shared.RoleShopkeeper}
}

func TestRecordSale(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(repo, 50)

	sale, err := svc.Record(context.Background(), RecordSaleRequest{Quantity: 3, CashReceived: 200}, shopkeeper())
	require.NoError(t, err)
	assert.Equal(t, int64(5), sale.ShopkeeperID)
	assert.InDelta(t, 50, sale.UnitPrice, 0.001)
	assert.InDelta(t, 150, sale.TotalAmount, 0.001)
	assert.InDelta(t, 50, sale.ChangeReturned, 0.001)
	require.Len(t, repo.sales, 1)
}

func TestRecordSaleExactCash(t *testing.T) {
	svc := newService(&stubRepo{}, 50)

	sale, err := svc.Record(context.Background(), RecordSaleRequest{Quantity: 2, CashReceived: 100}, shopkeeper())
	require.NoError(t, err)
	assert.InDelta(t, 0, sale.ChangeReturned, 0.001)
}

func TestRecordSaleInsufficientPayment(t *testing.T) {
	svc := newService(&stubRepo{}, 50)

	_, err := svc.Record(context.Background(), RecordSaleRequest{Quantity: 3, CashReceived: 100}, shopkeeper())
	assert.True(t, errors.Is(err, httpx.ErrInsufficientPayment))
}

func TestRecordSaleQuantityValidation(t *testing.T) {
	svc := newService(&stubRepo{}, 50)

	_, err := svc.Record(context.Background(), RecordSaleRequest{Quantity: 0, CashReceived: 100}, shopkeeper())
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestRecordSaleFreezesPrice(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(repo, 50)

	_, err := svc.Record(context.Background(), RecordSaleRequest{Quantity: 1, CashReceived: 50}, shopkeeper())
	require.NoError(t, err)

	// Later price changes never rewrite an existing record.
	svc2 := newService(repo, 80)
	_, err = svc2.Record(context.Background(), RecordSaleRequest{Quantity: 1, CashReceived: 80}, shopkeeper())
	require.NoError(t, err)

	assert.InDelta(t, 50, repo.sales[0].UnitPrice, 0.001)
	assert.InDelta(t, 80, repo.sales[1].UnitPrice, 0.001)
}

func TestDailySummary(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(repo, 50)

	for i := 0; i < 3; i++ {
		_, err := svc.Record(context.Background(), RecordSaleRequest{Quantity: 2, CashReceived: 100}, shopkeeper())
		require.NoError(t, err)
	}

	summary, err := svc.DailySummary(context.Background(), 0, time.Now(), shopkeeper())
	require.NoError(t, err)
	assert.Equal(t, int64(5), summary.ShopkeeperID)
	assert.Equal(t, 3, summary.NumberOfTransactions)
	assert.Equal(t, 6, summary.TotalQuantity)
	assert.InDelta(t, 300, summary.TotalSales, 0.001)
	assert.Len(t, summary.Sales, 3)
}

func TestDailySummaryAdminNeedsShopkeeper(t *testing.T) {
	svc := newService(&stubRepo{}, 50)
	admin := &shared.Identity{UserID: 1, Role: shared.RoleAdmin}

	_, err := svc.DailySummary(context.Background(), 0, time.Now(), admin)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestListScopesToShopkeeper(t *testing.T) {
	repo := &stubRepo{sales: []Sale{
		{ID: 1, ShopkeeperID: 5, SaleDate: time.Now()},
		{ID: 2, ShopkeeperID: 9, SaleDate: time.Now()},
	}}
	svc := newService(repo, 50)

	list, _, err := svc.List(context.Background(), ListFilters{}, shopkeeper())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ID)
}
