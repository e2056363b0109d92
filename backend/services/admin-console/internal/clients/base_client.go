package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeout bounds every call when Options.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// TokenSource provides the bearer token for outgoing calls and forgets it on 401.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
}

// Options configures Client.
type Options struct {
	BaseURL       string
	ClientVersion string
	Timeout       time.Duration
	// OnUnauthorized runs after a 401 response cleared the token.
	OnUnauthorized func(ctx context.Context)
}

var requestIDGenerator = func() string {
	return "req_" + uuid.NewString()
}

// Client is the authenticated JSON client shared by all endpoint clients.
type Client struct {
	baseURL        string
	version        string
	httpClient     HTTPDoer
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	logger         *zap.Logger
}

// NewClient builds Client. httpClient may be nil, in which case a client with
// the configured timeout is used.
func NewClient(opts Options, httpClient HTTPDoer, tokens TokenSource, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = NewDefaultHTTPClient(opts.Timeout)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		version:        opts.ClientVersion,
		httpClient:     httpClient,
		tokens:         tokens,
		onUnauthorized: opts.OnUnauthorized,
		logger:         logger,
	}
}

func (c *Client) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Get decodes the response of GET path into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put sends body as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Patch sends body as JSON and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues DELETE path and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do executes one request. Non-2xx answers and transport failures come back
// as *APIError. out may be nil; an empty body leaves it untouched.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	requestID := requestIDGenerator()
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Request-ID", requestID)
	if c.version != "" {
		req.Header.Set("X-Client-Version", c.version)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
	)
	log.Debug("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := transportError(err, requestID)
		log.Warn("api request failed", zap.String("kind", string(apiErr.Kind)), zap.Error(err))
		return apiErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := transportError(err, requestID)
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	log.Debug("api response", zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := statusError(resp.StatusCode, respBody, requestID)
		c.handleStatus(ctx, log, apiErr)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) handleStatus(ctx context.Context, log *zap.Logger, apiErr *APIError) {
	fields := []zap.Field{zap.Int("status", apiErr.Status), zap.String("message", apiErr.Message)}
	switch apiErr.Kind {
	case KindUnauthorized:
		log.Warn("authentication required", fields...)
		if c.tokens != nil {
			if err := c.tokens.ClearToken(ctx); err != nil {
				log.Error("clear token", zap.Error(err))
			}
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
	case KindForbidden:
		log.Warn("access forbidden", fields...)
	case KindRateLimited:
		log.Warn("rate limit exceeded", fields...)
	case KindServer:
		log.Error("server error", fields...)
	default:
		log.Info("api request rejected", fields...)
	}
}

// NewDefaultHTTPClient returns *http.Client with timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
