package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/devine-water/devine-water/internal/finance"
	"github.com/devine-water/devine-water/internal/orders"
	"github.com/devine-water/devine-water/internal/routeplan"
	"github.com/devine-water/devine-water/internal/shared"
)

const cacheTTL = 60 * time.Second

// LedgerSummarizer supplies the month profit figure.
type LedgerSummarizer interface {
	Summarize(ctx context.Context, from, to time.Time) (*finance.Report, error)
}

// OrderLister supplies recent orders for the customer view.
type OrderLister interface {
	List(ctx context.Context, req orders.ListOrdersRequest) ([]orders.OrderWithDetails, int, error)
}

// RouteLister supplies the supplier's route of the day.
type RouteLister interface {
	List(ctx context.Context, f routeplan.ListFilters) ([]routeplan.Route, int, error)
}

// Service assembles the role dashboards. Aggregate queries fan out
// concurrently and the assembled view is cached briefly.
type Service struct {
	repo   Repository
	ledger LedgerSummarizer
	orders OrderLister
	routes RouteLister
	cache  *redis.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, ledger LedgerSummarizer, orderLister OrderLister, routeLister RouteLister, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		ledger: ledger,
		orders: orderLister,
		routes: routeLister,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Admin assembles the operator-wide dashboard.
func (s *Service) Admin(ctx context.Context) (*AdminDashboard, error) {
	key := "dashboard:admin"
	var cached AdminDashboard
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	out := &AdminDashboard{GeneratedAt: now}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.repo.OrderCountsByStatus(gctx, nil)
		if err != nil {
			return fmt.Errorf("order counts: %w", err)
		}
		out.OrdersByStatus = counts
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.DeliveryCountToday(gctx, now)
		if err != nil {
			return fmt.Errorf("deliveries today: %w", err)
		}
		out.DeliveriesToday = n
		return nil
	})
	g.Go(func() error {
		report, err := s.ledger.Summarize(gctx, monthStart, now)
		if err != nil {
			return fmt.Errorf("month profit: %w", err)
		}
		out.MonthNetProfit = report.NetProfit
		return nil
	})
	g.Go(func() error {
		counts, err := s.repo.ActiveUsersByRole(gctx)
		if err != nil {
			return fmt.Errorf("active users: %w", err)
		}
		out.ActiveUsers = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.toCache(ctx, key, out)
	return out, nil
}

// Customer assembles one customer's dashboard.
func (s *Service) Customer(ctx context.Context, actor *shared.Identity) (*CustomerDashboard, error) {
	key := fmt.Sprintf("dashboard:customer:%d", actor.UserID)
	var cached CustomerDashboard
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	out := &CustomerDashboard{GeneratedAt: s.now()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.repo.OrderCountsByStatus(gctx, &actor.UserID)
		if err != nil {
			return fmt.Errorf("order counts: %w", err)
		}
		out.OrdersByStatus = counts
		return nil
	})
	g.Go(func() error {
		recent, _, err := s.orders.List(gctx, orders.ListOrdersRequest{
			CustomerID: &actor.UserID,
			Page:       1,
			PageSize:   5,
		})
		if err != nil {
			return fmt.Errorf("recent orders: %w", err)
		}
		out.RecentOrders = recent
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.toCache(ctx, key, out)
	return out, nil
}

// Supplier assembles one supplier's dashboard.
func (s *Service) Supplier(ctx context.Context, actor *shared.Identity) (*SupplierDashboard, error) {
	key := fmt.Sprintf("dashboard:supplier:%d", actor.UserID)
	var cached SupplierDashboard
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	today := s.now().Truncate(24 * time.Hour)
	out := &SupplierDashboard{GeneratedAt: s.now()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		routes, _, err := s.routes.List(gctx, routeplan.ListFilters{
			SupplierID: &actor.UserID,
			Date:       &today,
			Page:       1,
			PageSize:   1,
		})
		if err != nil {
			return fmt.Errorf("today route: %w", err)
		}
		if len(routes) > 0 {
			out.TodayRoute = &routes[0]
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.DeliveryCountByStatus(gctx, actor.UserID, "pending")
		if err != nil {
			return fmt.Errorf("pending deliveries: %w", err)
		}
		out.PendingDeliveries = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.DeliveryCountByStatus(gctx, actor.UserID, "in_progress")
		if err != nil {
			return fmt.Errorf("in-progress deliveries: %w", err)
		}
		out.InProgressDeliveries = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.toCache(ctx, key, out)
	return out, nil
}

func (s *Service) fromCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (s *Service) toCache(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		s.logger.Warn("cache dashboard", slog.String("key", key), slog.Any("error", err))
	}
}
