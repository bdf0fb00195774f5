package sessions

// Session holds the credentials of the signed-in user. An empty string means
// the value is absent: no access token means "logged out" as far as the
// request pipeline is concerned, whatever the server thinks of the token.
type Session struct {
	AccessToken  string // Short-lived JWT sent as a bearer credential
	RefreshToken string // Long-lived token exchanged for new access tokens
	IsAdmin      bool   // Role flag derived from the login response
	UserID       string // Account id from the login response, may be empty
}

// IsAuthenticated reports whether an access token is held.
func (s Session) IsAuthenticated() bool {
	return s.AccessToken != ""
}

// CanRefresh reports whether a refresh token is held.
func (s Session) CanRefresh() bool {
	return s.RefreshToken != ""
}

// IsEmpty reports whether nothing at all is held.
func (s Session) IsEmpty() bool {
	return s == Session{}
}
