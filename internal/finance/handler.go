package finance

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

// Handler wires HTTP endpoints for the ledger.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router, mw auth.Middleware) {
	r.With(mw.RequireCapability(shared.CapFinanceView)).Get("/incoming", h.listIncoming)
	r.With(mw.RequireCapability(shared.CapFinanceRecord)).Post("/incoming", h.recordIncoming)
	r.With(mw.RequireCapability(shared.CapFinanceView)).Get("/outgoing", h.listOutgoing)
	r.With(mw.RequireCapability(shared.CapFinanceRecord)).Post("/outgoing", h.recordOutgoing)
	r.With(mw.RequireCapability(shared.CapFinanceView)).Get("/reports", h.report)
}

func (h *Handler) recordIncoming(w http.ResponseWriter, r *http.Request) {
	var req RecordIncomingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.RecordIncoming(r.Context(), req, identity(r))
	if err != nil {
		h.logger.Error("record incoming", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) recordOutgoing(w http.ResponseWriter, r *http.Request) {
	var req RecordOutgoingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.RecordOutgoing(r.Context(), req, identity(r))
	if err != nil {
		h.logger.Error("record outgoing", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) listIncoming(w http.ResponseWriter, r *http.Request) {
	f := parseFilters(r)
	list, paging, err := h.service.ListIncoming(r.Context(), f)
	if err != nil {
		h.logger.Error("list incoming", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": list, "pagination": paging})
}

func (h *Handler) listOutgoing(w http.ResponseWriter, r *http.Request) {
	f := parseFilters(r)
	list, paging, err := h.service.ListOutgoing(r.Context(), f)
	if err != nil {
		h.logger.Error("list outgoing", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": list, "pagination": paging})
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := time.Parse("2006-01-02", q.Get("from"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from must be YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", q.Get("to"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to must be YYYY-MM-DD")
		return
	}
	to = to.Add(24*time.Hour - time.Nanosecond)

	report, err := h.service.Report(r.Context(), from, to)
	if err != nil {
		h.logger.Error("finance report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func parseFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	var f ListFilters
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.DateFrom = &t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			f.DateTo = &end
		}
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("page_size"))
	return f
}

func identity(r *http.Request) *shared.Identity {
	if id := shared.IdentityFromContext(r.Context()); id != nil {
		return id
	}
	return &shared.Identity{}
}
