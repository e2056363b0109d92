package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"evhub/backend/services/admin-console/internal/models"
)

type staticChecker bool

func (c staticChecker) Authenticated(context.Context) bool { return bool(c) }

func TestRequireSession(t *testing.T) {
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	RequireSession(staticChecker(false))(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/console/users", nil))
	if rec.Code != http.StatusUnauthorized || reached {
		t.Fatalf("expected 401 without reaching handler, got %d reached=%v", rec.Code, reached)
	}
	var res models.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Redirect != "/login" {
		t.Fatalf("expected /login redirect, got %q", res.Redirect)
	}

	rec = httptest.NewRecorder()
	RequireSession(staticChecker(true))(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/console/users", nil))
	if rec.Code != http.StatusNoContent || !reached {
		t.Fatalf("expected handler to run, got %d", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RecoveryMiddleware(zap.NewNop()), LoggingMiddleware(zap.NewNop()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestStatusRecorderExposesFlusher(t *testing.T) {
	var flushed bool
	h := LoggingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
			flushed = true
		}
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !flushed || !rec.Flushed {
		t.Fatalf("expected flush to reach the recorder")
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
}
