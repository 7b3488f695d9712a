package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/devine-water/devine-water/internal/audit"
	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	tokens    *Tokens
	auditor   *audit.Recorder
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, tokens *Tokens, auditor *audit.Recorder) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		tokens:    tokens,
		auditor:   auditor,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router. The middleware is
// applied per-route because login must stay reachable without a token.
func (h *Handler) MountRoutes(r chi.Router, mw Middleware) {
	r.Post("/login", h.handleLogin)
	r.With(mw.RequireAuth).Get("/verify", h.handleVerify)
	r.With(mw.RequireAuth).Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email and password are required")
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	h.auditor.Record(r.Context(), audit.Entry{
		UserID:    user.ID,
		Action:    audit.ActionLogin,
		Entity:    "User",
		EntityID:  strconv.FormatInt(user.ID, 10),
		IPAddress: r.RemoteAddr,
	})

	httpx.JSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	user, err := h.service.Lookup(r.Context(), identity.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity != nil {
		h.auditor.Record(r.Context(), audit.Entry{
			UserID:    identity.UserID,
			Action:    audit.ActionLogout,
			Entity:    "User",
			EntityID:  strconv.FormatInt(identity.UserID, 10),
			IPAddress: r.RemoteAddr,
		})
	}
	// Tokens are stateless; the client discards its copy.
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "logged out"})
}
