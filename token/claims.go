package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/jrsteele09/go-travels-client/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims is what the client can learn from an access token without the
// server's signing key. Nothing here is trusted for authorization; the API
// re-validates every token it receives.
type Claims struct {
	UserID    string
	TokenType string // "access" or "refresh"
	IsAdmin   bool
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time // zero when the token carries no exp claim
	ID        string
}

// ParseClaims decodes the payload of a JWT without verifying its signature.
func ParseClaims(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.Wrapf(errors.ErrMalformedToken, "empty token")
	}

	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedToken, "%v", err)
	}

	claims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrapf(errors.ErrMalformedToken, "error extracting claims")
	}

	c := &Claims{
		UserID:    utils.ToIDString(claims["user_id"]),
		TokenType: stringClaim(claims, "token_type"),
		IsAdmin:   utils.ToBool(claims["is_admin"]) || utils.ToBool(claims["is_staff"]),
		ID:        stringClaim(claims, "jti"),
	}
	if c.UserID == "" {
		c.UserID = stringClaim(claims, "sub")
	}

	if claimRoles, ok := claims["roles"].([]any); ok {
		c.Roles = utils.ToStringSlice(claimRoles)
		for _, role := range c.Roles {
			if role == "admin" {
				c.IsAdmin = true
			}
		}
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}

	return c, nil
}

// Expired reports whether the exp claim has passed. Tokens without exp never expire here.
func (c *Claims) Expired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return NowTimeFunc().After(c.ExpiresAt)
}

// ExpiresIn is the time left before the exp claim, zero when expired or unknown.
func (c *Claims) ExpiresIn() time.Duration {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	if d := c.ExpiresAt.Sub(NowTimeFunc()); d > 0 {
		return d
	}
	return 0
}

func stringClaim(claims jwtlib.MapClaims, name string) string {
	s, _ := claims[name].(string)
	return s
}
