package routeplan

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/devine-water/devine-water/internal/audit"
	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
)

// Service wraps route planning rules.
type Service struct {
	repo    Repository
	auditor *audit.Recorder
}

// NewService constructs a new Service.
func NewService(repo Repository, auditor *audit.Recorder) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Create plans a route in scheduled state. A supplier cannot hold two
// non-completed routes on the same date.
func (s *Service) Create(ctx context.Context, req CreateRouteRequest, actor *shared.Identity) (*Route, error) {
	if len(req.Stops) == 0 {
		return nil, fmt.Errorf("%w: a route needs at least one stop", httpx.ErrValidation)
	}
	date := req.RouteDate.Truncate(24 * time.Hour)

	open, err := s.repo.HasOpenRoute(ctx, req.SupplierID, date)
	if err != nil {
		return nil, fmt.Errorf("check open routes: %w", err)
	}
	if open {
		return nil, fmt.Errorf("%w: supplier %d already has an open route on %s", httpx.ErrValidation, req.SupplierID, date.Format("2006-01-02"))
	}

	route := Route{
		RouteDate:  date,
		SupplierID: req.SupplierID,
		Status:     StatusScheduled,
	}
	for i, in := range req.Stops {
		route.Stops = append(route.Stops, Stop{
			CustomerID: in.CustomerID,
			Address:    in.Address,
			TimeSlot:   in.TimeSlot,
			StopOrder:  i + 1,
		})
	}
	id, err := s.repo.Create(ctx, route)
	if err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:   actor.UserID,
		Action:   audit.ActionCreate,
		Entity:   "Route",
		EntityID: strconv.FormatInt(id, 10),
		Details:  fmt.Sprintf("supplier=%d stops=%d", req.SupplierID, len(req.Stops)),
	})
	return s.repo.Get(ctx, id)
}

// Get returns one route, scoped to the actor.
func (s *Service) Get(ctx context.Context, id int64, actor *shared.Identity) (*Route, error) {
	route, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == shared.RoleSupplier && route.SupplierID != actor.UserID {
		return nil, httpx.ErrForbidden
	}
	return route, nil
}

// List returns routes scoped to the actor: suppliers see their own plans.
func (s *Service) List(ctx context.Context, f ListFilters, actor *shared.Identity) ([]Route, shared.Pagination, error) {
	if actor.Role == shared.RoleSupplier {
		f.SupplierID = &actor.UserID
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

// Advance moves a route one step forward: scheduled to in_progress to
// completed. The step is a conditional update, so concurrent advances
// serialize and the loser gets ErrInvalidTransition.
func (s *Service) Advance(ctx context.Context, id int64, actor *shared.Identity) (*Route, error) {
	route, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == shared.RoleSupplier && route.SupplierID != actor.UserID {
		return nil, httpx.ErrForbidden
	}

	next := route.Status.Next()
	if next == "" {
		return nil, fmt.Errorf("%w: route %d is completed", httpx.ErrInvalidTransition, id)
	}
	won, err := s.repo.Advance(ctx, id, route.Status, next)
	if err != nil {
		return nil, fmt.Errorf("advance route: %w", err)
	}
	if !won {
		return nil, fmt.Errorf("%w: route %d is no longer %s", httpx.ErrInvalidTransition, id, route.Status)
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:   actor.UserID,
		Action:   audit.ActionUpdate,
		Entity:   "Route",
		EntityID: strconv.FormatInt(id, 10),
		Details:  "status=" + string(next),
	})
	return s.repo.Get(ctx, id)
}
