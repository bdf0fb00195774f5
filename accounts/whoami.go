package accounts

import (
	"time"

	"github.com/jrsteele09/go-travels-client/token"
)

// Identity summarises the stored session. Expiry fields come from the access
// token's claims and are zero when the token is opaque.
type Identity struct {
	Authenticated   bool      `json:"authenticated"`
	UserID          string    `json:"user_id,omitempty"`
	IsAdmin         bool      `json:"is_admin"`
	CanRefresh      bool      `json:"can_refresh"`
	AccessExpiresAt time.Time `json:"access_expires_at,omitempty"`
	AccessExpired   bool      `json:"access_expired"`
}

// Whoami reports who the stored session belongs to without calling the API.
func (s *Service) Whoami() Identity {
	session := s.store.Current()
	id := Identity{
		Authenticated: session.IsAuthenticated(),
		UserID:        session.UserID,
		IsAdmin:       session.IsAdmin,
		CanRefresh:    session.CanRefresh(),
	}
	if !session.IsAuthenticated() {
		return id
	}

	claims, err := token.ParseClaims(session.AccessToken)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Access token is not a readable JWT")
		return id
	}
	if id.UserID == "" {
		id.UserID = claims.UserID
	}
	if !claims.ExpiresAt.IsZero() {
		id.AccessExpiresAt = claims.ExpiresAt
		id.AccessExpired = !s.nowTime().Before(claims.ExpiresAt)
	}
	return id
}
