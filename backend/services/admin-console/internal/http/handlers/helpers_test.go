package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"evhub/backend/services/admin-console/internal/service"
)

func TestErrorResultStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&service.Error{Kind: service.KindValidation, Message: "Validation failed"}, http.StatusUnprocessableEntity},
		{&service.Error{Kind: service.KindConflict}, http.StatusConflict},
		{&service.Error{Kind: service.KindNotFound}, http.StatusNotFound},
		{&service.Error{Kind: service.KindUnauthorized}, http.StatusUnauthorized},
		{&service.Error{Kind: service.KindForbidden}, http.StatusForbidden},
		{&service.Error{Kind: service.KindRateLimited}, http.StatusTooManyRequests},
		{&service.Error{Kind: service.KindRejected, Status: http.StatusGone}, http.StatusGone},
		{&service.Error{Kind: service.KindRejected}, http.StatusBadRequest},
		{&service.Error{Kind: service.KindUpstream}, http.StatusBadGateway},
		{&service.Error{Kind: service.KindTimeout}, http.StatusGatewayTimeout},
		{&service.Error{Kind: service.KindOffline}, http.StatusServiceUnavailable},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, res := errorResult(tc.err)
		if got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
		if res.Success {
			t.Fatalf("%v: error result must not be successful", tc.err)
		}
	}

	_, res := errorResult(&service.Error{Kind: service.KindUnauthorized, Message: "Not signed in"})
	if res.Redirect != "/login" || res.Code != "unauthorized" {
		t.Fatalf("expected login redirect, got %+v", res)
	}
}

func TestClientInfoPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/console/auth/login", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r.Header.Set("User-Agent", "Mozilla/5.0 (iPhone)")
	info := clientInfo(r)
	if info.IPAddress != "203.0.113.7" || info.UserAgent != "Mozilla/5.0 (iPhone)" {
		t.Fatalf("unexpected client info %+v", info)
	}

	r = httptest.NewRequest(http.MethodPost, "/console/auth/login", nil)
	if got := clientInfo(r).IPAddress; got != "192.0.2.1" {
		t.Fatalf("expected remote host, got %s", got)
	}
}
