// Package gateway is the REST client of the MiComedor backend. Routes come
// from the OpenAPI contract, every scoped call reads the user from an
// injected session provider, and non-2xx statuses map to sentinel errors.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-micomedor/internal/openapi"
	"github.com/goliatone/go-micomedor/pkg/comedor"
	"github.com/goliatone/go-micomedor/pkg/session"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 4 << 20

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger. Requests log at debug, failures at warn.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRoutes replaces the embedded contract routes.
func WithRoutes(routes openapi.Routes) Option {
	return func(c *Client) {
		if len(routes) > 0 {
			c.routes = routes
		}
	}
}

// WithRequestIDFunc overrides request ID generation.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

// Client talks to the backend.
type Client struct {
	base      *url.URL
	http      *http.Client
	timeout   time.Duration
	provider  session.Provider
	routes    openapi.Routes
	logger    *zap.Logger
	requestID func() string
}

// New builds a client for baseURL. provider supplies the user for scoped
// calls; it may be nil for a client that only authenticates.
func New(baseURL string, provider session.Provider, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("gateway: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("gateway: base url %q must be absolute", baseURL)
	}

	c := &Client{
		base:      base,
		provider:  provider,
		logger:    zap.NewNop(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	} else if c.timeout > 0 && c.http.Timeout == 0 {
		clone := *c.http
		clone.Timeout = c.timeout
		c.http = &clone
	}
	if c.routes == nil {
		routes, err := openapi.Default()
		if err != nil {
			return nil, fmt.Errorf("gateway: load routes: %w", err)
		}
		c.routes = routes
	}
	return c, nil
}

// User returns the session user or session.ErrNotAuthenticated.
func (c *Client) User() (session.User, error) {
	return session.Require(c.provider)
}

// Call performs the operation identified by operationID. Path parameters
// come from params. body is JSON encoded when non-nil and out is decoded
// from a non-empty 2xx body when non-nil. It reports whether out was
// decoded.
func (c *Client) Call(ctx context.Context, operationID string, params map[string]string, body, out any) (bool, error) {
	route, err := c.routes.Lookup(operationID)
	if err != nil {
		return false, fmt.Errorf("gateway: %w", err)
	}

	var user session.User
	if !route.Public {
		user, err = c.User()
		if err != nil {
			return false, err
		}
	}

	path, err := route.Expand(params)
	if err != nil {
		return false, fmt.Errorf("gateway: %w", err)
	}
	target := strings.TrimRight(c.base.String(), "/") + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("gateway: %s: encode body: %w", operationID, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, route.Method, target, reader)
	if err != nil {
		return false, fmt.Errorf("gateway: %s: build request: %w", operationID, err)
	}
	requestID := c.requestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !route.Public {
		req.Header.Set("Authorization", "Bearer "+user.AccessToken)
	}

	fields := []zap.Field{
		zap.String("operation", operationID),
		zap.String("method", route.Method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("gateway request failed", append(fields, zap.Duration("duration", time.Since(started)), zap.Error(err))...)
		return false, fmt.Errorf("gateway: %s: %w", operationID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	fields = append(fields, zap.Int("status", resp.StatusCode), zap.Duration("duration", time.Since(started)))
	if err != nil {
		c.logger.Warn("gateway response unreadable", append(fields, zap.Error(err))...)
		return false, fmt.Errorf("gateway: %s: read body: %w", operationID, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(operationID, route.Method, path, requestID, resp.StatusCode, data)
		c.logger.Warn("gateway request rejected", append(fields, zap.String("message", apiErr.Message))...)
		return false, apiErr
	}
	c.logger.Debug("gateway request", fields...)

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("gateway: %s: decode response: %w", operationID, err)
	}
	return true, nil
}

// ScopedGet reads an endpoint whose {id} parameter is the current user.
func (c *Client) ScopedGet(ctx context.Context, operationID string, out any) error {
	user, err := c.User()
	if err != nil {
		return err
	}
	_, err = c.Call(ctx, operationID, userParams(user), nil, out)
	return err
}

// Authenticate exchanges credentials for a token. It implements
// session.Authenticator.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	var resp comedor.TokenResponse
	body := comedor.Credentials{Username: username, Password: password}
	if _, err := c.Call(ctx, "auth.authenticate", nil, body, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Token) == "" {
		return "", errors.New("gateway: auth.authenticate: response carries no token")
	}
	return resp.Token, nil
}

// Register creates a console account.
func (c *Client) Register(ctx context.Context, registration comedor.Registration) error {
	_, err := c.Call(ctx, "users.register", nil, registration, nil)
	return err
}

func userParams(u session.User) map[string]string {
	return map[string]string{"id": strconv.FormatInt(u.ID, 10)}
}

func idParams(id int64) map[string]string {
	return map[string]string{"id": strconv.FormatInt(id, 10)}
}
