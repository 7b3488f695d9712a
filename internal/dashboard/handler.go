package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devine-water/devine-water/internal/auth"
	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
)

// Handler wires HTTP endpoints for the role dashboards.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router, mw auth.Middleware) {
	r.With(mw.RequireCapability(shared.CapDashboardAdmin)).Get("/admin", h.admin)
	r.With(mw.RequireCapability(shared.CapDashboardCustomer)).Get("/customer", h.customer)
	r.With(mw.RequireCapability(shared.CapDashboardSupplier)).Get("/supplier", h.supplier)
}

func (h *Handler) admin(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Admin(r.Context())
	if err != nil {
		h.logger.Error("admin dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) customer(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Customer(r.Context(), identity(r))
	if err != nil {
		h.logger.Error("customer dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) supplier(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Supplier(r.Context(), identity(r))
	if err != nil {
		h.logger.Error("supplier dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func identity(r *http.Request) *shared.Identity {
	if id := shared.IdentityFromContext(r.Context()); id != nil {
		return id
	}
	return &shared.Identity{}
}
