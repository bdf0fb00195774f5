package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/jrsteele09/go-travels-client/sessions"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	DefaultTimeout    = 15 * time.Second
	DefaultLoginRoute = "/login"
	maxResponseLen    = 32 << 20
)

// SessionStore is the part of sessions.Store the pipeline needs.
type SessionStore interface {
	Current() sessions.Session
	SetTokens(accessToken, refreshToken string) error
	Clear() error
}

// TokenRefresher exchanges a refresh token for a new access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// Client is the authenticated request pipeline. Every call gets the current
// bearer token attached; a 401 triggers one token refresh and one resend of
// the same request. When the refresh fails the session is cleared and the
// redirector is sent to the login route.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SessionStore
	refresher  TokenRefresher
	redirector Redirector
	loginRoute string
	userAgent  string
	logger     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTimeout sets the per-attempt timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(cl *Client) {
		if timeout > 0 {
			cl.httpClient.Timeout = timeout
		}
	}
}

func WithRedirector(r Redirector) Option {
	return func(cl *Client) {
		if r != nil {
			cl.redirector = r
		}
	}
}

func WithLoginRoute(route string) Option {
	return func(cl *Client) {
		if route != "" {
			cl.loginRoute = route
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// New creates a pipeline for the API at baseURL.
func New(baseURL string, store SessionStore, refresher TokenRefresher, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "[client New] base url is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "[client New] invalid base url %q", baseURL)
	}
	if store == nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "[client New] session store is required")
	}
	if refresher == nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "[client New] token refresher is required")
	}

	c := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		store:      store,
		refresher:  refresher,
		redirector: noopRedirector{},
		loginRoute: DefaultLoginRoute,
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API origin requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req through the pipeline. A non-2xx outcome is returned as a
// *RequestError alongside the Response; a network failure returns a nil
// Response and a *RequestError with StatusCode 0.
//
// If the refresh after a 401 fails, the error returned matches
// errors.ErrSessionExpired and wraps the refresh error, not the original 401.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	pending, err := newPendingRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, pending, c.store.Current().AccessToken)
	if !IsUnauthorized(err) {
		return resp, err
	}

	session := c.store.Current()
	if pending.retried || !session.CanRefresh() {
		return resp, err
	}
	pending.retried = true

	c.logger.Debug().Str("request_id", pending.id).Str("path", pending.path).Msg("Access token rejected, refreshing")

	tok, refreshErr := c.refresher.Refresh(ctx, session.RefreshToken)
	if refreshErr != nil {
		c.logger.Warn().Err(refreshErr).Str("request_id", pending.id).Msg("Token refresh failed, signing out")
		if clearErr := c.store.Clear(); clearErr != nil {
			c.logger.Error().Err(clearErr).Msg("Unable to clear session after failed refresh")
		}
		c.redirector.RedirectToLogin(c.loginRoute)
		return nil, fmt.Errorf("%w: %w", errors.ErrSessionExpired, refreshErr)
	}

	if err := c.store.SetTokens(tok.AccessToken, tok.RefreshToken); err != nil {
		c.logger.Error().Err(err).Msg("Unable to persist refreshed access token")
	}

	return c.send(ctx, pending, tok.AccessToken)
}

func (c *Client) send(ctx context.Context, p *pendingRequest, accessToken string) (*Response, error) {
	endpoint, err := c.endpoint(p)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if p.body != nil {
		body = bytes.NewReader(p.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, p.method, endpoint, body)
	if err != nil {
		return nil, &RequestError{Op: "create http request", Method: p.method, Path: p.path, Err: err}
	}
	httpReq.Header = p.header.Clone()
	if p.contentType != "" {
		httpReq.Header.Set("Content-Type", p.contentType)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	httpReq.Header.Set("X-Request-ID", p.id)
	if accessToken != "" {
		(&oauth2.Token{AccessToken: accessToken}).SetAuthHeader(httpReq)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().Err(err).Str("request_id", p.id).Str("method", p.method).Str("path", p.path).Msg("API request failed")
		return nil, &RequestError{Op: "execute http request", Method: p.method, Path: p.path, Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseLen))
	if err != nil {
		return nil, &RequestError{Op: "read http response", Method: p.method, Path: p.path, StatusCode: httpResp.StatusCode, Err: err}
	}

	c.logger.Debug().
		Str("request_id", p.id).
		Str("method", p.method).
		Str("path", p.path).
		Int("status", httpResp.StatusCode).
		Bool("retried", p.retried).
		Dur("elapsed", time.Since(start)).
		Msg("API request")

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
		RequestID:  p.id,
		Retried:    p.retried,
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		reqErr := &RequestError{
			Op:         "unexpected http status",
			Method:     p.method,
			Path:       p.path,
			StatusCode: httpResp.StatusCode,
			Header:     httpResp.Header,
			Body:       data,
		}
		reqErr.Err = errors.New(reqErr.APIMessage())
		return resp, reqErr
	}
	return resp, nil
}

func (c *Client) endpoint(p *pendingRequest) (string, error) {
	u, err := url.Parse(c.baseURL + p.path)
	if err != nil {
		return "", &RequestError{Op: "build request url", Method: p.method, Path: p.path, Err: err}
	}
	if len(p.query) > 0 {
		q := u.Query()
		for key, values := range p.query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// DoJSON sends req and decodes a successful JSON response into out.
func (c *Client) DoJSON(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Get issues a GET with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.DoJSON(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST. body may be nil.
func (c *Client) Post(ctx context.Context, path string, body Body, out any) error {
	return c.DoJSON(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues a PUT. body may be nil.
func (c *Client) Put(ctx context.Context, path string, body Body, out any) error {
	return c.DoJSON(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.DoJSON(ctx, &Request{Method: http.MethodDelete, Path: path}, out)
}
