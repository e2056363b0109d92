// Package service composes the REST clients, the validation engine and the
// local stores into the operations the console exposes.
package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"evhub/backend/services/admin-console/internal/clients"
)

// ErrorKind classifies a failed service operation.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindConflict     ErrorKind = "conflict"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindRateLimited  ErrorKind = "rate_limited"
	KindRejected     ErrorKind = "rejected"
	KindUpstream     ErrorKind = "upstream"
	KindTimeout      ErrorKind = "timeout"
	KindOffline      ErrorKind = "offline"
	KindInternal     ErrorKind = "internal"
)

// Error is the only error type services return. Lower layer failures are
// normalized into it so callers see one shape regardless of origin.
type Error struct {
	Kind             ErrorKind
	Message          string
	Code             string
	Status           int
	ValidationErrors []string
	Err              error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

func validationError(errs []string) *Error {
	return &Error{
		Kind:             KindValidation,
		Message:          "Validation failed: " + strings.Join(errs, ", "),
		ValidationErrors: errs,
	}
}

func invalid(format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Kind: KindValidation, Message: msg, ValidationErrors: []string{msg}}
}

func conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// normalize converts err into *Error. fallback is used when the lower layer
// gave no readable message.
func normalize(err error, fallback string) error {
	if err == nil {
		return nil
	}
	if svcErr, ok := AsError(err); ok {
		return svcErr
	}

	var apiErr *clients.APIError
	if !errors.As(err, &apiErr) {
		return &Error{Kind: KindInternal, Message: fallback, Err: err}
	}

	out := &Error{
		Message: apiErr.Message,
		Code:    apiErr.Code,
		Status:  apiErr.Status,
		Err:     err,
	}
	switch apiErr.Kind {
	case clients.KindTransport:
		out.Kind = KindOffline
	case clients.KindTimeout:
		out.Kind = KindTimeout
	case clients.KindUnauthorized:
		out.Kind = KindUnauthorized
	case clients.KindForbidden:
		out.Kind = KindForbidden
	case clients.KindRateLimited:
		out.Kind = KindRateLimited
	case clients.KindServer:
		out.Kind = KindUpstream
	default:
		switch apiErr.Status {
		case http.StatusNotFound:
			out.Kind = KindNotFound
		case http.StatusConflict:
			out.Kind = KindConflict
		default:
			out.Kind = KindRejected
		}
	}
	if out.Message == "" || strings.HasPrefix(out.Message, "HTTP ") {
		if out.Kind != KindOffline && out.Kind != KindTimeout {
			out.Message = fallback
		}
	}
	return out
}
