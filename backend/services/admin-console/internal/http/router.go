package httpserver

import (
	"net/http"

	"evhub/backend/services/admin-console/internal/http/handlers"
	"evhub/backend/services/admin-console/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	AuthHandlers     *handlers.AuthHandlers
	StationsHandlers *handlers.StationsHandlers
	BookingsHandlers *handlers.BookingsHandlers
	UsersHandlers    *handlers.UsersHandlers
	HealthHandler    http.HandlerFunc
	Notifications    http.HandlerFunc
	// APIProxy serves /api/ when set.
	APIProxy http.Handler
}

// NewRouter wires HTTP routes with middleware. requireSession guards every
// console route except login and registration.
func NewRouter(deps RouterDeps, requireSession func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /health", deps.HealthHandler)
	if deps.Notifications != nil {
		mux.Handle("GET /ws/notifications", deps.Notifications)
	}
	if deps.APIProxy != nil {
		mux.Handle("/api/", deps.APIProxy)
	}

	auth := deps.AuthHandlers
	mux.HandleFunc("POST /console/auth/login", auth.Login)
	mux.HandleFunc("POST /console/auth/register", auth.Register)

	guarded := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, middleware.Chain(handler, requireSession))
	}

	guarded("POST /console/auth/logout", auth.Logout)
	guarded("GET /console/auth/me", auth.Me)
	guarded("GET /console/auth/login-history", auth.LoginHistory)
	guarded("GET /console/auth/login-history/local", auth.LocalLoginHistory)

	stations := deps.StationsHandlers
	guarded("GET /console/stations", stations.List)
	guarded("POST /console/stations", stations.Create)
	guarded("POST /console/stations/batch", stations.BatchCreate)
	guarded("GET /console/stations/{id}", stations.Get)
	guarded("PUT /console/stations/{id}", stations.Update)
	guarded("DELETE /console/stations/{id}", stations.Delete)
	guarded("PATCH /console/stations/{id}/activate", stations.Activate)
	guarded("PATCH /console/stations/{id}/deactivate", stations.Deactivate)

	bookings := deps.BookingsHandlers
	guarded("GET /console/bookings", bookings.List)
	guarded("POST /console/bookings", bookings.Create)
	guarded("GET /console/bookings/by-owner/{nic}", bookings.ByOwner)
	guarded("GET /console/bookings/by-station/{id}", bookings.ByStation)
	guarded("GET /console/bookings/by-status/{status}", bookings.ByStatus)
	guarded("GET /console/bookings/qr/{id}", bookings.QRCode)
	guarded("GET /console/bookings/{id}", bookings.Get)
	guarded("PUT /console/bookings/{id}", bookings.Update)
	guarded("DELETE /console/bookings/{id}", bookings.Delete)
	guarded("PUT /console/bookings/{id}/status", bookings.UpdateStatus)
	guarded("POST /console/bookings/{id}/approve", bookings.Approve)
	guarded("POST /console/bookings/{id}/cancel", bookings.Cancel)
	guarded("POST /console/bookings/{id}/complete", bookings.Complete)
	guarded("POST /console/bookings/{id}/transition", bookings.Transition)

	users := deps.UsersHandlers
	guarded("GET /console/users", users.List)
	guarded("POST /console/users", users.Create)
	guarded("POST /console/users/refresh", users.Refresh)
	guarded("GET /console/users/by-nic/{nic}", users.ByNIC)
	guarded("GET /console/users/by-email/{email}", users.ByEmail)
	guarded("GET /console/users/{id}", users.Get)
	guarded("PUT /console/users/{id}", users.Update)
	guarded("DELETE /console/users/{id}", users.Delete)
	guarded("PATCH /console/users/{id}/deactivate", users.Deactivate)
	guarded("PATCH /console/users/{id}/reactivate", users.Reactivate)

	return mux
}
