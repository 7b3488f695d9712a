package orders

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/devine-water/devine-water/internal/audit"
	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
	"github.com/devine-water/devine-water/internal/users"
)

// Directory looks up accounts referenced by orders.
type Directory interface {
	Get(ctx context.Context, id int64) (*users.User, error)
}

// Service wraps the order lifecycle rules.
type Service struct {
	repo      Repository
	directory Directory
	auditor   *audit.Recorder
	now       func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, directory Directory, auditor *audit.Recorder) *Service {
	return &Service{repo: repo, directory: directory, auditor: auditor, now: time.Now}
}

// Create places an order in pending state.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest, actor *shared.Identity) (*Order, error) {
	customerID := req.CustomerID
	if actor.Role == shared.RoleCustomer {
		// Customers always order for themselves.
		customerID = actor.UserID
	}
	if customerID == 0 {
		return nil, fmt.Errorf("%w: customer_id required", httpx.ErrValidation)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", httpx.ErrValidation)
	}
	today := s.now().Truncate(24 * time.Hour)
	if req.DeliveryDate.Before(today) {
		return nil, fmt.Errorf("%w: delivery date is in the past", httpx.ErrValidation)
	}
	if req.Address == "" {
		return nil, fmt.Errorf("%w: address required", httpx.ErrValidation)
	}

	customer, err := s.directory.Get(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}
	if customer.Status != users.StatusActive {
		return nil, fmt.Errorf("%w: customer account is inactive", httpx.ErrValidation)
	}

	order := Order{
		CustomerID:   customerID,
		Quantity:     req.Quantity,
		OrderDate:    s.now(),
		DeliveryDate: req.DeliveryDate,
		Status:       StatusPending,
		Address:      req.Address,
		Notes:        req.Notes,
	}
	id, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:   actor.UserID,
		Action:   audit.ActionCreate,
		Entity:   "Order",
		EntityID: strconv.FormatInt(id, 10),
		Details:  fmt.Sprintf("quantity=%d", req.Quantity),
	})
	return s.repo.Get(ctx, id)
}

// Assign hands a pending order to a supplier and opens its delivery.
// Exactly one of two concurrent assigns wins; the loser gets ErrInvalidTransition.
func (s *Service) Assign(ctx context.Context, orderID int64, req AssignOrderRequest, actor *shared.Identity) (*Order, error) {
	supplier, err := s.directory.Get(ctx, req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("verify supplier: %w", err)
	}
	if supplier.Role != shared.RoleSupplier {
		return nil, fmt.Errorf("%w: account %d is not a supplier", httpx.ErrValidation, req.SupplierID)
	}
	if supplier.Status != users.StatusActive {
		return nil, fmt.Errorf("%w: supplier account is inactive", httpx.ErrValidation)
	}

	existing, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	deliveryID, won, err := s.repo.AssignWithDelivery(ctx, orderID, req.SupplierID, existing.DeliveryDate)
	if err != nil {
		return nil, fmt.Errorf("assign order: %w", err)
	}
	if !won {
		return nil, fmt.Errorf("%w: order %d is not pending", httpx.ErrInvalidTransition, orderID)
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:   actor.UserID,
		Action:   audit.ActionUpdate,
		Entity:   "Order",
		EntityID: strconv.FormatInt(orderID, 10),
		Details:  fmt.Sprintf("assigned to supplier %d", req.SupplierID),
	})
	s.auditor.Record(ctx, audit.Entry{
		UserID:   actor.UserID,
		Action:   audit.ActionCreate,
		Entity:   "Delivery",
		EntityID: strconv.FormatInt(deliveryID, 10),
	})
	return s.repo.Get(ctx, orderID)
}

// Cancel aborts an order that has not been delivered. A linked delivery is
// cascade-cancelled in the same transaction.
func (s *Service) Cancel(ctx context.Context, orderID int64, actor *shared.Identity) (*Order, error) {
	existing, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor.Role == shared.RoleCustomer && existing.CustomerID != actor.UserID {
		return nil, httpx.ErrForbidden
	}

	won, err := s.repo.CancelWithDelivery(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	if !won {
		return nil, fmt.Errorf("%w: order %d is already %s", httpx.ErrInvalidTransition, orderID, existing.Status)
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:   actor.UserID,
		Action:   audit.ActionUpdate,
		Entity:   "Order",
		EntityID: strconv.FormatInt(orderID, 10),
		Details:  "cancelled",
	})
	return s.repo.Get(ctx, orderID)
}

// Get returns one order, scoped to the actor's role.
func (s *Service) Get(ctx context.Context, id int64, actor *shared.Identity) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case shared.RoleCustomer:
		if order.CustomerID != actor.UserID {
			return nil, httpx.ErrForbidden
		}
	case shared.RoleSupplier:
		if order.SupplierID == nil || *order.SupplierID != actor.UserID {
			return nil, httpx.ErrForbidden
		}
	}
	return order, nil
}

// List returns orders scoped to the actor: customers see their own, suppliers
// see their assignments, admins see everything.
func (s *Service) List(ctx context.Context, req ListOrdersRequest, actor *shared.Identity) ([]OrderWithDetails, shared.Pagination, error) {
	switch actor.Role {
	case shared.RoleCustomer:
		req.CustomerID = &actor.UserID
		req.SupplierID = nil
	case shared.RoleSupplier:
		req.SupplierID = &actor.UserID
		req.CustomerID = nil
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	list, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(req.Page, req.PageSize, total), nil
}
