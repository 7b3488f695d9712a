package deliveries

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/devine-water/devine-water/internal/audit"
	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
)

// Service wraps delivery fulfilment rules.
type Service struct {
	repo    Repository
	auditor *audit.Recorder
	now     func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, auditor *audit.Recorder) *Service {
	return &Service{repo: repo, auditor: auditor, now: time.Now}
}

// UpdateStatusRequest moves a delivery through its lifecycle.
type UpdateStatusRequest struct {
	Status DeliveryStatus `json:"status" validate:"required,oneof=in_progress completed"`
	Notes  string         `json:"notes"`
}

// Get returns one delivery, scoped to the actor.
func (s *Service) Get(ctx context.Context, id int64, actor *shared.Identity) (*Delivery, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == shared.RoleSupplier && d.SupplierID != actor.UserID {
		return nil, httpx.ErrForbidden
	}
	return d, nil
}

// List returns deliveries scoped to the actor: suppliers see their own runs,
// customers see deliveries against their orders, admins see everything.
func (s *Service) List(ctx context.Context, f ListFilters, actor *shared.Identity) ([]DeliveryWithDetails, shared.Pagination, error) {
	switch actor.Role {
	case shared.RoleSupplier:
		f.SupplierID = &actor.UserID
		f.CustomerID = nil
	case shared.RoleCustomer:
		f.CustomerID = &actor.UserID
		f.SupplierID = nil
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

// UpdateStatus advances a delivery. Suppliers may only touch their own runs.
// Completing a delivery marks the parent order delivered in the same
// transaction.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest, actor *shared.Identity) (*Delivery, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == shared.RoleSupplier && existing.SupplierID != actor.UserID {
		return nil, httpx.ErrForbidden
	}

	var won bool
	switch req.Status {
	case StatusInProgress:
		won, err = s.repo.Start(ctx, id, req.Notes)
	case StatusCompleted:
		won, err = s.repo.Complete(ctx, id, req.Notes, s.now())
	default:
		return nil, fmt.Errorf("%w: cannot set status %q", httpx.ErrValidation, req.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("update delivery: %w", err)
	}
	if !won {
		return nil, fmt.Errorf("%w: delivery %d is %s", httpx.ErrInvalidTransition, id, existing.Status)
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:   actor.UserID,
		Action:   audit.ActionUpdate,
		Entity:   "Delivery",
		EntityID: strconv.FormatInt(id, 10),
		Details:  "status=" + string(req.Status),
	})
	return s.repo.Get(ctx, id)
}
