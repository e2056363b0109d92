package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"evhub/backend/services/admin-console/internal/models"
	"evhub/backend/services/admin-console/internal/service"
)

// AuthHandlers serves the login, registration and login history screens.
type AuthHandlers struct {
	base
	svc *service.AuthService
}

// NewAuthHandlers returns handler struct.
func NewAuthHandlers(svc *service.AuthService, notifier Notifier, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{base: newBase(notifier, logger), svc: svc}
}

// Login handles POST /console/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := h.svc.Login(r.Context(), req.Email, req.Password, clientInfo(r))
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, res.User, "Login successful")
}

// Register handles POST /console/auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := h.svc.Register(r.Context(), in, clientInfo(r))
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusCreated, res.User, "Registration successful")
}

// Logout handles POST /console/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context()); err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, nil, "Logged out")
}

// Me handles GET /console/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.CurrentUser(r.Context())
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, u, "")
}

// LoginHistory handles GET /console/auth/login-history.
func (h *AuthHandlers) LoginHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.LoginHistory(r.Context())
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, entries, "")
}

// LocalLoginHistory handles GET /console/auth/login-history/local?limit=N.
func (h *AuthHandlers) LocalLoginHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	entries, err := h.svc.LocalLoginHistory(r.Context(), limit)
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, entries, "")
}
