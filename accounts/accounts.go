package accounts

import (
	"context"
	"time"

	"github.com/jrsteele09/go-travels-client/client"
	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/jrsteele09/go-travels-client/sessions"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// API endpoints owned by the accounts area.
const (
	LoginPath                = "/api/login/"
	RegisterPath             = "/api/register/"
	PasswordResetRequestPath = "/api/password-reset/request/"
	PasswordResetConfirmPath = "/api/password-reset/confirm/"
)

// API is the request pipeline as seen by the accounts service.
type API interface {
	DoJSON(ctx context.Context, req *client.Request, out any) error
}

// SessionStore is written on login and cleared on logout. Nothing else in the
// accounts area touches credentials.
type SessionStore interface {
	Current() sessions.Session
	Save(session sessions.Session) error
	Clear() error
}

// Service signs users in and out and handles self-service account requests.
type Service struct {
	api     API
	store   SessionStore
	logger  zerolog.Logger
	nowTime func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates the accounts service on top of the request pipeline.
func NewService(api API, store SessionStore, options ...ServiceOption) (*Service, error) {
	if api == nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "[NewService] api is required")
	}
	if store == nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "[NewService] session store is required")
	}

	s := &Service{
		api:     api,
		store:   store,
		logger:  log.Logger,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}
