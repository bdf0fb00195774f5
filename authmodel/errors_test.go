package authmodel_test

import (
	"testing"

	"github.com/jrsteele09/go-travels-client/authmodel"
	"github.com/stretchr/testify/require"
)

func TestParseAPIError(t *testing.T) {
	t.Run("error key", func(t *testing.T) {
		apiErr, ok := authmodel.ParseAPIError([]byte(`{"error":"Seat already booked"}`))
		require.True(t, ok)
		require.Equal(t, "Seat already booked", apiErr.Text())
	})

	t.Run("detail key", func(t *testing.T) {
		apiErr, ok := authmodel.ParseAPIError([]byte(`{"detail":"Given token not valid for any token type","code":"token_not_valid"}`))
		require.True(t, ok)
		require.Equal(t, "Given token not valid for any token type", apiErr.Text())
	})

	t.Run("field errors", func(t *testing.T) {
		apiErr, ok := authmodel.ParseAPIError([]byte(`{"username":["A user with that username already exists."],"email":["Enter a valid email address."]}`))
		require.True(t, ok)
		require.Equal(t, "email: Enter a valid email address.; username: A user with that username already exists.", apiErr.Text())
	})

	t.Run("not json", func(t *testing.T) {
		_, ok := authmodel.ParseAPIError([]byte("<html>Bad Gateway</html>"))
		require.False(t, ok)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := authmodel.ParseAPIError(nil)
		require.False(t, ok)
	})
}
