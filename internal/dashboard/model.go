package dashboard

import (
	"time"

	"github.com/devine-water/devine-water/internal/orders"
	"github.com/devine-water/devine-water/internal/routeplan"
)

// AdminDashboard is the operator-wide view.
type AdminDashboard struct {
	OrdersByStatus  map[string]int64 `json:"orders_by_status"`
	DeliveriesToday int64            `json:"deliveries_today"`
	MonthNetProfit  float64          `json:"month_net_profit"`
	ActiveUsers     map[string]int64 `json:"active_users_by_role"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// CustomerDashboard is one customer's view.
type CustomerDashboard struct {
	OrdersByStatus map[string]int64          `json:"orders_by_status"`
	RecentOrders   []orders.OrderWithDetails `json:"recent_orders"`
	GeneratedAt    time.Time                 `json:"generated_at"`
}

// SupplierDashboard is one supplier's view.
type SupplierDashboard struct {
	TodayRoute           *routeplan.Route `json:"today_route,omitempty"`
	PendingDeliveries    int64            `json:"pending_deliveries"`
	InProgressDeliveries int64            `json:"in_progress_deliveries"`
	GeneratedAt          time.Time        `json:"generated_at"`
}
