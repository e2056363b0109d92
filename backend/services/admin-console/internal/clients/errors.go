package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind classifies a failed call.
type Kind string

const (
	KindTransport    Kind = "transport"
	KindTimeout      Kind = "timeout"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindRateLimited  Kind = "rate_limited"
	KindServer       Kind = "server"
	KindStatus       Kind = "status"
)

const (
	networkErrorMessage = "Network error occurred"
	timeoutErrorMessage = "Request timed out"
)

// APIError is returned by Client for every failed call.
type APIError struct {
	Kind      Kind
	Status    int
	Message   string
	Code      string
	RequestID string
	Err       error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Offline reports whether the backend could not be reached at all.
func (e *APIError) Offline() bool {
	return e.Kind == KindTransport || e.Kind == KindTimeout
}

// KindOf returns the kind of an *APIError in err's chain, or "".
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsOffline reports whether err is a transport or timeout failure.
func IsOffline(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Offline()
}

// ClassifyStatus maps an HTTP status to a Kind. 2xx maps to "".
func ClassifyStatus(status int) Kind {
	switch {
	case status >= 200 && status <= 299:
		return ""
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindServer
	}
	return KindStatus
}

func transportError(err error, requestID string) *APIError {
	kind, msg := KindTransport, networkErrorMessage
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind, msg = KindTimeout, timeoutErrorMessage
	}
	return &APIError{Kind: kind, Message: msg, RequestID: requestID, Err: err}
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Title   string `json:"title"`
	Code    any    `json:"code"`
}

func statusError(status int, body []byte, requestID string) *APIError {
	apiErr := &APIError{
		Kind:      ClassifyStatus(status),
		Status:    status,
		Message:   fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)),
		RequestID: requestID,
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 && !strings.HasPrefix(text, "<") {
			apiErr.Message = text
		}
		return apiErr
	}
	switch {
	case eb.Message != "":
		apiErr.Message = eb.Message
	case eb.Error != "":
		apiErr.Message = eb.Error
	case eb.Title != "":
		apiErr.Message = eb.Title
	}
	if eb.Code != nil {
		apiErr.Code = fmt.Sprint(eb.Code)
	}
	return apiErr
}
