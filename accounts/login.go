package accounts

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-travels-client/authmodel"
	"github.com/jrsteele09/go-travels-client/client"
	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/jrsteele09/go-travels-client/internal/utils"
	"github.com/jrsteele09/go-travels-client/sessions"
	"github.com/jrsteele09/go-travels-client/token"
)

// Login exchanges credentials for a token pair and replaces the stored session
// with it. A 401 from the login endpoint is reported as ErrInvalidCredentials.
//
// The call goes through the pipeline like any other: a stale session is still
// attached, and a 401 with a refresh token present runs the refresh cycle
// before the credentials are judged.
func (s *Service) Login(ctx context.Context, username, password string) (sessions.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return sessions.Session{}, errors.Wrapf(errors.ErrInvalidRequest, "[Login] username and password are required")
	}

	var resp authmodel.LoginResponse
	err := s.api.DoJSON(ctx, &client.Request{
		Method: http.MethodPost,
		Path:   LoginPath,
		Body:   client.JSON(authmodel.LoginRequest{Username: username, Password: password}),
	}, &resp)
	if err != nil {
		if client.IsUnauthorized(err) {
			return sessions.Session{}, errors.Wrapf(errors.ErrInvalidCredentials, "[Login] %s", apiMessage(err))
		}
		return sessions.Session{}, errors.Wrapf(err, "[Login] login request failed")
	}
	if resp.Access == "" || resp.Refresh == "" {
		return sessions.Session{}, errors.New("[Login] login response is missing tokens")
	}

	session := sessionFromLogin(resp)
	if err := s.store.Save(session); err != nil {
		return sessions.Session{}, errors.Wrapf(err, "[Login] unable to store session")
	}

	s.logger.Info().Str("user_id", session.UserID).Bool("is_admin", session.IsAdmin).Msg("User logged in")
	return session, nil
}

// sessionFromLogin builds the session from the login body, reading the role
// and user id from the access token when the body does not carry them.
func sessionFromLogin(resp authmodel.LoginResponse) sessions.Session {
	session := sessions.Session{
		AccessToken:  resp.Access,
		RefreshToken: resp.Refresh,
		IsAdmin:      utils.Value(resp.IsAdmin),
		UserID:       rawID(resp.UserID),
	}

	if resp.IsAdmin != nil && session.UserID != "" {
		return session
	}
	claims, err := token.ParseClaims(resp.Access)
	if err != nil {
		return session
	}
	if resp.IsAdmin == nil {
		session.IsAdmin = claims.IsAdmin
	}
	if session.UserID == "" {
		session.UserID = claims.UserID
	}
	return session
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return utils.ToIDString(v)
}

// Logout forgets the stored session. It does not call the API: the server
// keeps no session to revoke.
func (s *Service) Logout() error {
	if err := s.store.Clear(); err != nil {
		return errors.Wrapf(err, "[Logout] unable to clear session")
	}
	s.logger.Info().Msg("User logged out")
	return nil
}

func apiMessage(err error) string {
	var reqErr *client.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.APIMessage()
	}
	return err.Error()
}
