package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"evhub/backend/services/admin-console/internal/clients"
	"evhub/backend/services/admin-console/internal/models"
	"evhub/backend/services/admin-console/internal/service"
)

// UsersHandlers serves user management.
type UsersHandlers struct {
	base
	svc   *service.UserService
	retry clients.Retrier
}

// NewUsersHandlers returns handler. retry drives the cache refresh.
func NewUsersHandlers(svc *service.UserService, retry clients.Retrier, notifier Notifier, logger *zap.Logger) *UsersHandlers {
	return &UsersHandlers{base: newBase(notifier, logger), svc: svc, retry: retry}
}

type userList struct {
	Users []models.User `json:"users"`
	Total int           `json:"total"`
}

// List handles GET /console/users?search=&role=.
func (h *UsersHandlers) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		h.failure(w, err)
		return
	}
	q := r.URL.Query()
	filtered := service.FilterUsers(users, service.UserFilter{Search: q.Get("search"), Role: q.Get("role")})
	h.success(w, http.StatusOK, userList{Users: filtered, Total: len(users)}, "")
}

func (h *UsersHandlers) one(w http.ResponseWriter, u models.User, err error, status int, toast string) {
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, status, u, toast)
}

// Get handles GET /console/users/{id}.
func (h *UsersHandlers) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), r.PathValue("id"))
	h.one(w, u, err, http.StatusOK, "")
}

// ByNIC handles GET /console/users/by-nic/{nic}.
func (h *UsersHandlers) ByNIC(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.ByNIC(r.Context(), r.PathValue("nic"))
	h.one(w, u, err, http.StatusOK, "")
}

// ByEmail handles GET /console/users/by-email/{email}.
func (h *UsersHandlers) ByEmail(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.ByEmail(r.Context(), r.PathValue("email"))
	h.one(w, u, err, http.StatusOK, "")
}

// Create handles POST /console/users.
func (h *UsersHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	u, err := h.svc.Create(r.Context(), in)
	h.one(w, u, err, http.StatusCreated, "User created successfully")
}

// Update handles PUT /console/users/{id}.
func (h *UsersHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	u, err := h.svc.Update(r.Context(), r.PathValue("id"), in)
	h.one(w, u, err, http.StatusOK, "User updated successfully")
}

// Delete handles DELETE /console/users/{id}?confirm=true.
func (h *UsersHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		requireConfirmation(w)
		return
	}
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, nil, "User deleted successfully")
}

// Deactivate handles PATCH /console/users/{id}/deactivate?confirm=true.
func (h *UsersHandlers) Deactivate(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		requireConfirmation(w)
		return
	}
	u, err := h.svc.Deactivate(r.Context(), r.PathValue("id"))
	h.one(w, u, err, http.StatusOK, "User deactivated successfully")
}

// Reactivate handles PATCH /console/users/{id}/reactivate.
func (h *UsersHandlers) Reactivate(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Reactivate(r.Context(), r.PathValue("id"))
	h.one(w, u, err, http.StatusOK, "User reactivated successfully")
}

// Refresh handles POST /console/users/refresh.
func (h *UsersHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Refresh(r.Context(), h.retry)
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, map[string]int{"synced": n}, "")
}
