package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/jrsteele09/go-travels-client/token"
	"github.com/stretchr/testify/require"
)

const secretStr = "1234"

func signed(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secretStr))
	require.NoError(t, err)
	return raw
}

func TestParseClaims(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { token.NowTimeFunc = time.Now })

	t.Run("access token", func(t *testing.T) {
		raw := signed(t, jwtlib.MapClaims{
			"token_type": "access",
			"user_id":    42,
			"jti":        "abc",
			"iat":        now.Add(-time.Minute).Unix(),
			"exp":        now.Add(4 * time.Minute).Unix(),
		})

		c, err := token.ParseClaims(raw)
		require.NoError(t, err)
		require.Equal(t, "42", c.UserID)
		require.Equal(t, "access", c.TokenType)
		require.Equal(t, "abc", c.ID)
		require.False(t, c.IsAdmin)
		require.False(t, c.Expired())
		require.Equal(t, 4*time.Minute, c.ExpiresIn())
	})

	t.Run("admin flags", func(t *testing.T) {
		for name, claims := range map[string]jwtlib.MapClaims{
			"is_admin": {"is_admin": true},
			"is_staff": {"is_staff": "true"},
			"roles":    {"roles": []any{"user", "admin"}},
		} {
			c, err := token.ParseClaims(signed(t, claims))
			require.NoError(t, err, name)
			require.True(t, c.IsAdmin, name)
		}
	})

	t.Run("expired", func(t *testing.T) {
		c, err := token.ParseClaims(signed(t, jwtlib.MapClaims{"exp": now.Add(-time.Second).Unix()}))
		require.NoError(t, err)
		require.True(t, c.Expired())
		require.Zero(t, c.ExpiresIn())
	})

	t.Run("no exp", func(t *testing.T) {
		c, err := token.ParseClaims(signed(t, jwtlib.MapClaims{"sub": "u-1"}))
		require.NoError(t, err)
		require.Equal(t, "u-1", c.UserID)
		require.False(t, c.Expired())
		require.True(t, c.ExpiresAt.IsZero())
	})

	t.Run("malformed", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "STALE", "a.b.c"} {
			_, err := token.ParseClaims(raw)
			require.Error(t, err)
			require.True(t, errors.Is(err, errors.ErrMalformedToken))
		}
	})
}
