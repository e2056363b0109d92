package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"evhub/backend/services/admin-console/internal/models"
	"evhub/backend/services/admin-console/internal/notify"
	"evhub/backend/services/admin-console/internal/service"
)

const maxBodyBytes = 1 << 20

// Notifier delivers toasts to the operator.
type Notifier interface {
	Notify(kind notify.Kind, message string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(notify.Kind, string) {}

// base carries what every resource handler needs to answer.
type base struct {
	notifier Notifier
	logger   *zap.Logger
}

func newBase(notifier Notifier, logger *zap.Logger) base {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{notifier: notifier, logger: logger}
}

// success writes data and, when toast is set, notifies the operator.
func (b base) success(w http.ResponseWriter, status int, data any, toast string) {
	if toast != "" {
		b.notifier.Notify(notify.KindSuccess, toast)
	}
	writeJSON(w, status, models.OK(data))
}

// failure writes err in the result envelope and raises an error toast.
func (b base) failure(w http.ResponseWriter, err error) {
	status, res := errorResult(err)
	if status >= http.StatusInternalServerError {
		b.logger.Error("console operation failed", zap.Error(err))
	}
	b.notifier.Notify(notify.KindError, res.Error)
	writeJSON(w, status, res)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.Result{Error: message})
}

func errorResult(err error) (int, models.Result) {
	svcErr, ok := service.AsError(err)
	if !ok {
		return http.StatusInternalServerError, models.Result{Error: "Unexpected error", Code: string(service.KindInternal)}
	}
	res := models.Result{
		Error:            svcErr.Message,
		Code:             svcErr.Code,
		ValidationErrors: svcErr.ValidationErrors,
	}
	if res.Code == "" {
		res.Code = string(svcErr.Kind)
	}
	status := http.StatusInternalServerError
	switch svcErr.Kind {
	case service.KindValidation:
		status = http.StatusUnprocessableEntity
	case service.KindConflict:
		status = http.StatusConflict
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindUnauthorized:
		status = http.StatusUnauthorized
		res.Redirect = "/login"
	case service.KindForbidden:
		status = http.StatusForbidden
	case service.KindRateLimited:
		status = http.StatusTooManyRequests
	case service.KindRejected:
		status = http.StatusBadRequest
		if svcErr.Status >= 400 && svcErr.Status < 500 {
			status = svcErr.Status
		}
	case service.KindUpstream:
		status = http.StatusBadGateway
	case service.KindTimeout:
		status = http.StatusGatewayTimeout
	case service.KindOffline:
		status = http.StatusServiceUnavailable
	}
	return status, res
}

var errEmptyBody = errors.New("request body is empty")

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

// confirmed reports whether a destructive request carries confirm=true.
func confirmed(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("confirm"), "true")
}

func requireConfirmation(w http.ResponseWriter) {
	writeJSON(w, http.StatusPreconditionRequired, models.Result{
		Error: "confirmation required",
		Code:  "confirmation_required",
	})
}

func clientInfo(r *http.Request) service.ClientInfo {
	ip := r.Header.Get("X-Forwarded-For")
	if i := strings.IndexByte(ip, ','); i >= 0 {
		ip = ip[:i]
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		} else {
			ip = r.RemoteAddr
		}
	}
	return service.ClientInfo{IPAddress: ip, UserAgent: r.UserAgent()}
}
