package routeplan

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/devine-water/devine-water/internal/auth"
	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
)

// Handler wires HTTP endpoints for route planning.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers route planning routes.
func (h *Handler) MountRoutes(r chi.Router, mw auth.Middleware) {
	r.With(mw.RequireCapability(shared.CapRoutesView)).Get("/", h.list)
	r.With(mw.RequireCapability(shared.CapRoutesManage)).Post("/", h.create)
	r.With(mw.RequireCapability(shared.CapRoutesView)).Get("/{id}", h.get)
	r.With(mw.RequireCapability(shared.CapRoutesView)).Post("/{id}/advance", h.advance)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f ListFilters
	if v := q.Get("supplier_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.SupplierID = &id
		}
	}
	if v := q.Get("date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.Date = &t
		}
	}
	if v := q.Get("status"); v != "" {
		status := RouteStatus(v)
		f.Status = &status
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	list, paging, err := h.service.List(r.Context(), f, identity(r))
	if err != nil {
		h.logger.Error("list routes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"routes": list, "pagination": paging})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	route, err := h.service.Get(r.Context(), id, identity(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, route)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRouteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	route, err := h.service.Create(r.Context(), req, identity(r))
	if err != nil {
		h.logger.Error("create route", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, route)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	route, err := h.service.Advance(r.Context(), id, identity(r))
	if err != nil {
		h.logger.Error("advance route", slog.Any("error", err), slog.Int64("route_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, route)
}

func identity(r *http.Request) *shared.Identity {
	if id := shared.IdentityFromContext(r.Context()); id != nil {
		return id
	}
	return &shared.Identity{}
}
