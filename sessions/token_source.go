package sessions

import (
	"github.com/jrsteele09/go-travels-client/internal/errors"
	"golang.org/x/oauth2"
)

// TokenSource exposes the current access token as an oauth2.TokenSource so
// other HTTP clients (oauth2.NewClient) can share the signed-in identity. It
// never refreshes; refresh-on-401 belongs to the request pipeline.
func (s *Store) TokenSource() oauth2.TokenSource {
	return storeTokenSource{store: s}
}

type storeTokenSource struct {
	store *Store
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	session := ts.store.Current()
	if !session.IsAuthenticated() {
		return nil, errors.ErrNotAuthenticated
	}
	return &oauth2.Token{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}
