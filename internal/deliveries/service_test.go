package deliveries

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devine-water/devine-water/internal/audit"
	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
)

type stubRepo struct {
	mu         sync.Mutex
	deliveries map[int64]*Delivery
	orderDone  map[int64]bool
}

func newStubRepo(seed ...*Delivery) *stubRepo {
	repo := &stubRepo{deliveries: map[int64]*Delivery{}, orderDone: map[int64]bool{}}
	for _, d := range seed {
		repo.deliveries[d.ID] = d
	}
	return repo
}

func (s *stubRepo) Get(_ context.Context, id int64) (*Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deliveries[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (s *stubRepo) List(_ context.Context, f ListFilters) ([]DeliveryWithDetails, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []DeliveryWithDetails
	for _, d := range s.deliveries {
		if f.SupplierID != nil && d.SupplierID != *f.SupplierID {
			continue
		}
		out = append(out, DeliveryWithDetails{Delivery: *d})
	}
	return out, len(out), nil
}

func (s *stubRepo) Start(_ context.Context, id int64, _ string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deliveries[id]
	if !ok || d.Status != StatusPending {
		return false, nil
	}
	d.Status = StatusInProgress
	return true, nil
}

func (s *stubRepo) Complete(_ context.Context, id int64, _ string, completedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deliveries[id]
	if !ok || d.Status.Terminal() {
		return false, nil
	}
	d.Status = StatusCompleted
	d.CompletedAt = &completedAt
	s.orderDone[d.OrderID] = true
	return true, nil
}

func pendingDelivery() *Delivery {
	return &Delivery{ID: 1, OrderID: 10, SupplierID: 2, DeliveryDate: time.Now(), Status: StatusPending}
}

func supplier() *shared.Identity { return &shared.Identity{UserID: 2, Role: shared.RoleSupplier} }
func admin() *shared.Identity    { return &shared.Identity{UserID: 99, Role: shared.RoleAdmin} }

func newService(repo Repository) *Service {
	var auditor *audit.Recorder
	return NewService(repo, auditor)
}

func TestUpdateStatusStart(t *testing.T) {
	repo := newStubRepo(pendingDelivery())
	svc := newService(repo)

	d, err := svc.UpdateStatus(context.Background(), 1, UpdateStatusRequest{Status: StatusInProgress}, supplier())
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, d.Status)
}

func TestUpdateStatusCompleteFlipsOrder(t *testing.T) {
	repo := newStubRepo(pendingDelivery())
	svc := newService(repo)

	_, err := svc.UpdateStatus(context.Background(), 1, UpdateStatusRequest{Status: StatusInProgress}, supplier())
	require.NoError(t, err)

	d, err := svc.UpdateStatus(context.Background(), 1, UpdateStatusRequest{Status: StatusCompleted}, supplier())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, d.Status)
	require.NotNil(t, d.CompletedAt)
	assert.True(t, repo.orderDone[10])
}

func TestUpdateStatusCompleteFromPending(t *testing.T) {
	repo := newStubRepo(pendingDelivery())
	svc := newService(repo)

	d, err := svc.UpdateStatus(context.Background(), 1, UpdateStatusRequest{Status: StatusCompleted}, supplier())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, d.Status)
	assert.True(t, repo.orderDone[10])
}

func TestUpdateStatusCannotCompleteTwice(t *testing.T) {
	repo := newStubRepo(pendingDelivery())
	svc := newService(repo)

	_, err := svc.UpdateStatus(context.Background(), 1, UpdateStatusRequest{Status: StatusCompleted}, supplier())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), 1, UpdateStatusRequest{Status: StatusCompleted}, supplier())
	assert.True(t, errors.Is(err, httpx.ErrInvalidTransition))
}

func TestUpdateStatusForeignSupplierForbidden(t *testing.T) {
	repo := newStubRepo(pendingDelivery())
	svc := newService(repo)

	other := &shared.Identity{UserID: 5, Role: shared.RoleSupplier}
	_, err := svc.UpdateStatus(context.Background(), 1, UpdateStatusRequest{Status: StatusInProgress}, other)
	assert.True(t, errors.Is(err, httpx.ErrForbidden))
}

func TestUpdateStatusRejectsUnknownTarget(t *testing.T) {
	repo := newStubRepo(pendingDelivery())
	svc := newService(repo)

	_, err := svc.UpdateStatus(context.Background(), 1, UpdateStatusRequest{Status: StatusCancelled}, supplier())
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc := newService(newStubRepo())

	_, err := svc.UpdateStatus(context.Background(), 404, UpdateStatusRequest{Status: StatusInProgress}, admin())
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestListScopesToSupplier(t *testing.T) {
	other := &Delivery{ID: 2, OrderID: 11, SupplierID: 5, DeliveryDate: time.Now(), Status: StatusPending}
	repo := newStubRepo(pendingDelivery(), other)
	svc := newService(repo)

	list, _, err := svc.List(context.Background(), ListFilters{}, supplier())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ID)

	all, _, err := svc.List(context.Background(), ListFilters{}, admin())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
