package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devine-water/devine-water/internal/audit"
	"github.com/devine-water/devine-water/internal/auth"
	"github.com/devine-water/devine-water/internal/dashboard"
	"github.com/devine-water/devine-water/internal/deliveries"
	"github.com/devine-water/devine-water/internal/finance"
	"github.com/devine-water/devine-water/internal/orders"
	"github.com/devine-water/devine-water/internal/routeplan"
	"github.com/devine-water/devine-water/internal/shared"
	"github.com/devine-water/devine-water/internal/shopsales"
	"github.com/devine-water/devine-water/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthMiddleware auth.Middleware

	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	OrdersHandler     *orders.Handler
	DeliveriesHandler *deliveries.Handler
	RoutesHandler     *routeplan.Handler
	FinanceHandler    *finance.Handler
	ShopSalesHandler  *shopsales.Handler
	AuditHandler      *audit.Handler
	DashboardHandler  *dashboard.Handler
}

// NewRouter constructs the chi.Router for the API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mw := params.AuthMiddleware
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r, mw)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth)

			r.Route("/orders", func(r chi.Router) {
				params.OrdersHandler.MountRoutes(r, mw)
			})
			r.Route("/deliveries", func(r chi.Router) {
				params.DeliveriesHandler.MountRoutes(r, mw)
			})
			r.Route("/routes", func(r chi.Router) {
				params.RoutesHandler.MountRoutes(r, mw)
			})
			r.Route("/finance", func(r chi.Router) {
				params.FinanceHandler.MountRoutes(r, mw)
			})
			r.Route("/shop-sales", func(r chi.Router) {
				params.ShopSalesHandler.MountRoutes(r, mw)
			})
			r.Route("/dashboard", func(r chi.Router) {
				params.DashboardHandler.MountRoutes(r, mw)
			})
			r.With(mw.RequireCapability(shared.CapUsersManage)).Route("/users", params.UsersHandler.MountRoutes)
			r.With(mw.RequireCapability(shared.CapLogsView)).Route("/logs", params.AuditHandler.MountRoutes)
		})
	})

	return r
}
