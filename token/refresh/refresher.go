package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-travels-client/authmodel"
	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/jrsteele09/go-travels-client/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	DefaultPath    = "/api/token/refresh/"
	maxResponseLen = 1 << 20
)

// Error reports a failed refresh. It always matches errors.ErrRefreshFailed.
type Error struct {
	StatusCode int // 0 when no response was received
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status=%d: %v", errors.ErrRefreshFailed, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", errors.ErrRefreshFailed, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == errors.ErrRefreshFailed
}

// Refresher exchanges a refresh token for a new access token. It talks to the
// refresh endpoint with its own plain HTTP client: no bearer header, no
// retries, and it never writes the session.
type Refresher struct {
	baseURL    string
	path       string
	httpClient *http.Client
	logger     zerolog.Logger
}

type Option func(*Refresher)

func WithHTTPClient(c *http.Client) Option {
	return func(r *Refresher) {
		r.httpClient = c
	}
}

// WithPath overrides DefaultPath.
func WithPath(path string) Option {
	return func(r *Refresher) {
		if path != "" {
			r.path = "/" + strings.TrimLeft(path, "/")
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Refresher) {
		r.logger = logger
	}
}

// New creates a Refresher for the API at baseURL (e.g. "http://localhost:8000").
func New(baseURL string, opts ...Option) *Refresher {
	r := &Refresher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		path:       DefaultPath,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Endpoint returns the absolute refresh URL.
func (r *Refresher) Endpoint() string {
	return r.baseURL + r.path
}

// Refresh returns the new access token. The expiry is read from the token's
// exp claim when it can be decoded. If the API rotated the refresh token the
// new one is set on the result, otherwise RefreshToken is empty.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, &Error{Err: errors.ErrNoRefreshToken}
	}

	payload, err := json.Marshal(authmodel.RefreshRequest{Refresh: refreshToken})
	if err != nil {
		return nil, &Error{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLen))
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if apiErr, ok := authmodel.ParseAPIError(body); ok {
			msg = apiErr.Text()
		}
		return nil, &Error{StatusCode: resp.StatusCode, Body: body, Err: errors.New(msg)}
	}

	var refreshed authmodel.RefreshResponse
	if err := json.Unmarshal(body, &refreshed); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Body: body, Err: errors.Wrapf(err, "decode refresh response")}
	}
	if refreshed.Access == "" {
		return nil, &Error{StatusCode: resp.StatusCode, Body: body, Err: errors.New("refresh response has no access token")}
	}

	tok := &oauth2.Token{
		AccessToken:  refreshed.Access,
		TokenType:    "Bearer",
		RefreshToken: refreshed.Refresh,
	}
	if claims, err := token.ParseClaims(refreshed.Access); err == nil {
		tok.Expiry = claims.ExpiresAt
	} else {
		r.logger.Debug().Err(err).Msg("Refreshed access token is not a readable JWT")
	}

	return tok, nil
}
