package sessions

import (
	"sync"

	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store is the single source of truth for credentials. It keeps the session in
// memory and writes every change through to a Repo. Login, logout and token
// refresh are the only writers.
type Store struct {
	repo   Repo
	logger zerolog.Logger

	mu      sync.RWMutex
	session Session
}

type StoreOption func(*Store)

// WithLogger overrides the global zerolog logger.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore restores the persisted session from repo. A repo that cannot be read
// is treated as holding nothing; the failure is logged, not returned.
func NewStore(repo Repo, opts ...StoreOption) *Store {
	s := &Store{
		repo:   repo,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.session = s.Load()
	return s
}

// Load re-reads the persisted session and makes it current.
func (s *Store) Load() Session {
	session, err := s.repo.Load()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Unable to restore session, starting signed out")
		session = Session{}
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	return session
}

// Current returns a copy of the in-memory session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// AccessToken returns the current access token, or "".
func (s *Store) AccessToken() string {
	return s.Current().AccessToken
}

// RefreshToken returns the current refresh token, or "".
func (s *Store) RefreshToken() string {
	return s.Current().RefreshToken
}

// Save replaces the whole session. The in-memory value changes even if
// persisting fails; the persistence error is returned.
func (s *Store) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
	if err := s.repo.Save(session); err != nil {
		return errors.Wrapf(err, "[Store Save] persist session")
	}
	return nil
}

// SetTokens is the write path after a successful token refresh. It replaces
// the access token and, when the API rotated it, the refresh token; the role
// flag and user id are kept. An empty refreshToken keeps the current one.
func (s *Store) SetTokens(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.AccessToken = accessToken
	if refreshToken != "" {
		s.session.RefreshToken = refreshToken
	}
	if err := s.repo.Save(s.session); err != nil {
		return errors.Wrapf(err, "[Store SetTokens] persist session")
	}
	return nil
}

// Clear forgets every credential. Idempotent.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = Session{}
	if err := s.repo.Clear(); err != nil {
		return errors.Wrapf(err, "[Store Clear] clear persisted session")
	}
	return nil
}
