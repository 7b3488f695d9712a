package finance

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devine-water/devine-water/internal/audit"
	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
)

type stubRepo struct {
	incoming   []Incoming
	outgoing   []Outgoing
	summarized int
}

func (s *stubRepo) InsertIncoming(_ context.Context, e Incoming) (int64, error) {
	e.ID = int64(len(s.incoming) + 1)
	s.incoming = append(s.incoming, e)
	return e.ID, nil
}

func (s *stubRepo) InsertIncomingTx(_ context.Context, _ pgx.Tx, e Incoming) (int64, error) {
	e.ID = int64(len(s.incoming) + 1)
	s.incoming = append(s.incoming, e)
	return e.ID, nil
}

func (s *stubRepo) InsertOutgoing(_ context.Context, e Outgoing) (int64, error) {
	e.ID = int64(len(s.outgoing) + 1)
	s.outgoing = append(s.outgoing, e)
	return e.ID, nil
}

func (s *stubRepo) ListIncoming(_ context.Context, _ ListFilters) ([]Incoming, int, error) {
	return s.incoming, len(s.incoming), nil
}

func (s *stubRepo) ListOutgoing(_ context.Context, _ ListFilters) ([]Outgoing, int, error) {
	return s.outgoing, len(s.outgoing), nil
}

func (s *stubRepo) Summarize(_ context.Context, from, to time.Time) (*Report, error) {
	s.summarized++
	report := &Report{
		From:           from,
		To:             to,
		IncomingBySrc:  make(map[IncomingSource]float64),
		OutgoingByCat:  make(map[OutgoingCategory]float64),
		AmountByMethod: make(map[PaymentMethod]float64),
	}
	for _, e := range s.incoming {
		report.TotalIncoming += e.Amount
		report.IncomingBySrc[e.Source] += e.Amount
		report.AmountByMethod[e.PaymentMethod] += e.Amount
	}
	for _, e := range s.outgoing {
		report.TotalOutgoing += e.Amount
		report.OutgoingByCat[e.Category] += e.Amount
	}
	report.NetProfit = report.TotalIncoming - report.TotalOutgoing
	return report, nil
}

func newService(t *testing.T, repo Repository) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	var auditor *audit.Recorder
	return NewService(repo, client, auditor, slog.Default()), mr
}

func actor() *shared.Identity { return &shared.Identity{UserID: 99, Role: shared.RoleAdmin} }

func TestRecordIncomingValidation(t *testing.T) {
	svc, _ := newService(t, &stubRepo{})

	_, err := svc.RecordIncoming(context.Background(), RecordIncomingRequest{
		Source: "tips", Amount: 10, EntryDate: time.Now(), PaymentMethod: MethodCash,
	}, actor())
	assert.True(t, errors.Is(err, httpx.ErrValidation))

	_, err = svc.RecordIncoming(context.Background(), RecordIncomingRequest{
		Source: SourceAdvance, Amount: 10, EntryDate: time.Now(), PaymentMethod: "crypto",
	}, actor())
	assert.True(t, errors.Is(err, httpx.ErrValidation))

	_, err = svc.RecordIncoming(context.Background(), RecordIncomingRequest{
		Source: SourceAdvance, Amount: -5, EntryDate: time.Now(), PaymentMethod: MethodCash,
	}, actor())
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestRecordOutgoingValidation(t *testing.T) {
	svc, _ := newService(t, &stubRepo{})

	_, err := svc.RecordOutgoing(context.Background(), RecordOutgoingRequest{
		Category: "bribes", Amount: 10, EntryDate: time.Now(), PaymentMethod: MethodCash,
	}, actor())
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestRecordAndReport(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := newService(t, repo)
	now := time.Now()

	_, err := svc.RecordIncoming(context.Background(), RecordIncomingRequest{
		Source: SourceCustomerPayment, Amount: 500, EntryDate: now, PaymentMethod: MethodCash,
	}, actor())
	require.NoError(t, err)
	_, err = svc.RecordIncoming(context.Background(), RecordIncomingRequest{
		Source: SourceShopSale, Amount: 150, EntryDate: now, PaymentMethod: MethodMobile,
	}, actor())
	require.NoError(t, err)
	_, err = svc.RecordOutgoing(context.Background(), RecordOutgoingRequest{
		Category: CategoryFuel, Amount: 200, EntryDate: now, PaymentMethod: MethodCash,
	}, actor())
	require.NoError(t, err)

	report, err := svc.Report(context.Background(), now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 650, report.TotalIncoming, 0.001)
	assert.InDelta(t, 200, report.TotalOutgoing, 0.001)
	assert.InDelta(t, 450, report.NetProfit, 0.001)
	assert.InDelta(t, 500, report.IncomingBySrc[SourceCustomerPayment], 0.001)
	assert.InDelta(t, 200, report.OutgoingByCat[CategoryFuel], 0.001)
	assert.Equal(t, "450.00", report.Display.NetProfit)
}

func TestReportUsesCache(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := newService(t, repo)
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.Report(context.Background(), from, to)
	require.NoError(t, err)
	_, err = svc.Report(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.summarized)
}

func TestWriteInvalidatesReportCache(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := newService(t, repo)
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.Report(context.Background(), from, to)
	require.NoError(t, err)

	_, err = svc.RecordIncoming(context.Background(), RecordIncomingRequest{
		Source: SourceOther, Amount: 25, EntryDate: from.Add(time.Hour), PaymentMethod: MethodBank,
	}, actor())
	require.NoError(t, err)

	report, err := svc.Report(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.summarized)
	assert.InDelta(t, 25, report.TotalIncoming, 0.001)
}

func TestReportInvertedRange(t *testing.T) {
	svc, _ := newService(t, &stubRepo{})
	now := time.Now()

	_, err := svc.Report(context.Background(), now, now.Add(-time.Hour))
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}
