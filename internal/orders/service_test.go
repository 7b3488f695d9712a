package orders

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
	"github.com/devine-water/devine-water/internal/users"
)

type stubRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*Order
}

func newStubRepo() *stubRepo {
	return &stubRepo{nextID: 1, orders: map[int64]*Order{}}
}

func (s *stubRepo) Get(_ context.Context, id int64) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *stubRepo) List(_ context.Context, req ListOrdersRequest) ([]OrderWithDetails, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []OrderWithDetails
	for _, o := range s.orders {
		if req.CustomerID != nil && o.CustomerID != *req.CustomerID {
			continue
		}
		if req.SupplierID != nil && (o.SupplierID == nil || *o.SupplierID != *req.SupplierID) {
			continue
		}
		out = append(out, OrderWithDetails{Order: *o})
	}
	return out, len(out), nil
}

func (s *stubRepo) Create(_ context.Context, o Order) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	o.ID = id
	s.orders[id] = &o
	return id, nil
}

func (s *stubRepo) AssignWithDelivery(_ context.Context, orderID, supplierID int64, _ time.Time) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status != StatusPending {
		return 0, false, nil
	}
	o.Status = StatusAssigned
	o.SupplierID = &supplierID
	return orderID + 1000, true, nil
}

func (s *stubRepo) CancelWithDelivery(_ context.Context, orderID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status.Terminal() {
		return false, nil
	}
	o.Status = StatusCancelled
	return true, nil
}

type stubDirectory struct {
	users map[int64]*users.User
}

func (s *stubDirectory) Get(_ context.Context, id int64) (*users.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, httpx.ErrNotFound
}

func fixtures() (*stubRepo, *stubDirectory, *Service) {
	repo := newStubRepo()
	dir := &stubDirectory{users: map[int64]*users.User{
		1: {ID: 1, Role: shared.RoleCustomer, Status: users.StatusActive},
		2: {ID: 2, Role: shared.RoleSupplier, Status: users.StatusActive},
		3: {ID: 3, Role: shared.RoleSupplier, Status: users.StatusInactive},
		4: {ID: 4, Role: shared.RoleCustomer, Status: users.StatusActive},
	}}
	var auditor *audit.Recorder
	svc := NewService(repo, dir, auditor)
	return repo, dir, svc
}

func admin() *shared.Identity    { return &shared.Identity{UserID: 99, Role: shared.RoleAdmin} }
func customer() *shared.Identity { return &shared.Identity{UserID: 1, Role: shared.RoleCustomer} }

func validCreate() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerID:   1,
		Quantity:     3,
		DeliveryDate: time.Now().Add(48 * time.Hour),
		Address:      "12 Lake Road",
	}
}

func TestCreateOrder(t *testing.T) {
	_, _, svc := fixtures()

	order, err := svc.Create(context.Background(), validCreate(), admin())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, int64(1), order.CustomerID)
}

func TestCreateOrderCustomerOrdersForSelf(t *testing.T) {
	_, _, svc := fixtures()

	req := validCreate()
	req.CustomerID = 4
	order, err := svc.Create(context.Background(), req, customer())
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.CustomerID)
}

func TestCreateOrderValidation(t *testing.T) {
	_, _, svc := fixtures()

	req := validCreate()
	req.Quantity = 0
	_, err := svc.Create(context.Background(), req, admin())
	assert.True(t, errors.Is(err, httpx.ErrValidation))

	req = validCreate()
	req.DeliveryDate = time.Now().Add(-48 * time.Hour)
	_, err = svc.Create(context.Background(), req, admin())
	assert.True(t, errors.Is(err, httpx.ErrValidation))

	req = validCreate()
	req.Address = ""
	_, err = svc.Create(context.Background(), req, admin())
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestAssignOrder(t *testing.T) {
	_, _, svc := fixtures()
	order, err := svc.Create(context.Background(), validCreate(), admin())
	require.NoError(t, err)

	assigned, err := svc.Assign(context.Background(), order.ID, AssignOrderRequest{SupplierID: 2}, admin())
	require.NoError(t, err)
	assert.Equal(t, StatusAssigned, assigned.Status)
	require.NotNil(t, assigned.SupplierID)
	assert.Equal(t, int64(2), *assigned.SupplierID)
}

func TestAssignOrderRejectsNonSupplier(t *testing.T) {
	_, _, svc := fixtures()
	order, err := svc.Create(context.Background(), validCreate(), admin())
	require.NoError(t, err)

	_, err = svc.Assign(context.Background(), order.ID, AssignOrderRequest{SupplierID: 1}, admin())
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestAssignOrderRejectsInactiveSupplier(t *testing.T) {
	_, _, svc := fixtures()
	order, err := svc.Create(context.Background(), validCreate(), admin())
	require.NoError(t, err)

	_, err = svc.Assign(context.Background(), order.ID, AssignOrderRequest{SupplierID: 3}, admin())
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestAssignOrderTwiceLosesSecond(t *testing.T) {
	_, _, svc := fixtures()
	order, err := svc.Create(context.Background(), validCreate(), admin())
	require.NoError(t, err)

	_, err = svc.Assign(context.Background(), order.ID, AssignOrderRequest{SupplierID: 2}, admin())
	require.NoError(t, err)

	_, err = svc.Assign(context.Background(), order.ID, AssignOrderRequest{SupplierID: 2}, admin())
	assert.True(t, errors.Is(err, httpx.ErrInvalidTransition))
}

func TestAssignOrderConcurrentExactlyOneWins(t *testing.T) {
	_, _, svc := fixtures()
	order, err := svc.Create(context.Background(), validCreate(), admin())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Assign(context.Background(), order.ID, AssignOrderRequest{SupplierID: 2}, admin())
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, errors.Is(err, httpx.ErrInvalidTransition))
		}
	}
	assert.Equal(t, 1, winners)
}

func TestCancelOrder(t *testing.T) {
	_, _, svc := fixtures()
	order, err := svc.Create(context.Background(), validCreate(), admin())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), order.ID, admin())
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	_, err = svc.Cancel(context.Background(), order.ID, admin())
	assert.True(t, errors.Is(err, httpx.ErrInvalidTransition))
}

func TestCancelOrderForeignCustomerForbidden(t *testing.T) {
	_, _, svc := fixtures()
	order, err := svc.Create(context.Background(), validCreate(), admin())
	require.NoError(t, err)

	other := &shared.Identity{UserID: 4, Role: shared.RoleCustomer}
	_, err = svc.Cancel(context.Background(), order.ID, other)
	assert.True(t, errors.Is(err, httpx.ErrForbidden))
}

func TestGetOrderScoping(t *testing.T) {
	_, _, svc := fixtures()
	order, err := svc.Create(context.Background(), validCreate(), admin())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), order.ID, customer())
	assert.NoError(t, err)

	other := &shared.Identity{UserID: 4, Role: shared.RoleCustomer}
	_, err = svc.Get(context.Background(), order.ID, other)
	assert.True(t, errors.Is(err, httpx.ErrForbidden))

	supplier := &shared.Identity{UserID: 2, Role: shared.RoleSupplier}
	_, err = svc.Get(context.Background(), order.ID, supplier)
	assert.True(t, errors.Is(err, httpx.ErrForbidden))

	_, err = svc.Assign(context.Background(), order.ID, AssignOrderRequest{SupplierID: 2}, admin())
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), order.ID, supplier)
	assert.NoError(t, err)
}

func TestListOrdersScopesToActor(t *testing.T) {
	repo, _, svc := fixtures()
	first, err := svc.Create(context.Background(), validCreate(), admin())
	require.NoError(t, err)

	req := validCreate()
	req.CustomerID = 4
	_, err = svc.Create(context.Background(), req, admin())
	require.NoError(t, err)

	list, _, err := svc.List(context.Background(), ListOrdersRequest{}, customer())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)

	all, _, err := svc.List(context.Background(), ListOrdersRequest{}, admin())
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, len(repo.orders))
}
