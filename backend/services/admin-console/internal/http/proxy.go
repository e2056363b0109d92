package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"evhub/backend/services/admin-console/internal/models"
)

// NewAPIProxy forwards /api/ to target unchanged, so the browser console can
// talk to the backend through one origin.
func NewAPIProxy(target string, verbose bool, logger *zap.Logger) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse proxy target: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("proxy target %q must be an absolute URL", target)
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(u)
			r.SetXForwarded()
			r.Out.Host = u.Host
			if verbose {
				logger.Debug("proxy request",
					zap.String("method", r.In.Method),
					zap.String("path", r.In.URL.Path),
					zap.String("target", r.Out.URL.String()),
				)
			}
		},
		ModifyResponse: func(resp *http.Response) error {
			if verbose {
				logger.Debug("proxy response",
					zap.String("path", resp.Request.URL.Path),
					zap.Int("status", resp.StatusCode),
				)
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("proxy error", zap.String("path", r.URL.Path), zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(models.Result{Error: "Backend unavailable", Code: "upstream"})
		},
	}
	return proxy, nil
}
