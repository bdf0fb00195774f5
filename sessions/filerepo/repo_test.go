package filerepo_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/jrsteele09/go-travels-client/sessions"
	"github.com/jrsteele09/go-travels-client/sessions/filerepo"
	"github.com/stretchr/testify/require"
)

func sessionPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "travels", "session.json")
}

func TestRepo_LoadMissingFileIsEmpty(t *testing.T) {
	r := filerepo.New(sessionPath(t))

	s, err := r.Load()
	require.NoError(t, err)
	require.True(t, s.IsEmpty())
}

func TestRepo_RoundTrip(t *testing.T) {
	r := filerepo.New(sessionPath(t))
	want := sessions.Session{AccessToken: "A1", RefreshToken: "R1", IsAdmin: true, UserID: "7"}

	require.NoError(t, r.Save(want))

	got, err := r.Load()
	require.NoError(t, err)
	require.Equal(t, want, got)

	info, err := os.Stat(r.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRepo_AbsentSlotsAreOmitted(t *testing.T) {
	r := filerepo.New(sessionPath(t))
	require.NoError(t, r.Save(sessions.Session{AccessToken: "A1"}))

	data, err := os.ReadFile(r.Path())
	require.NoError(t, err)

	slots := map[string]string{}
	require.NoError(t, json.Unmarshal(data, &slots))
	require.Equal(t, map[string]string{filerepo.SlotAccessToken: "A1"}, slots)
}

func TestRepo_SaveOverwrites(t *testing.T) {
	r := filerepo.New(sessionPath(t))
	require.NoError(t, r.Save(sessions.Session{AccessToken: "A1", RefreshToken: "R1", IsAdmin: true}))
	require.NoError(t, r.Save(sessions.Session{AccessToken: "A2"}))

	got, err := r.Load()
	require.NoError(t, err)
	require.Equal(t, sessions.Session{AccessToken: "A2"}, got)
}

func TestRepo_ClearIsIdempotent(t *testing.T) {
	r := filerepo.New(sessionPath(t))
	require.NoError(t, r.Save(sessions.Session{AccessToken: "A1", RefreshToken: "R1"}))

	require.NoError(t, r.Clear())
	require.NoError(t, r.Clear())

	got, err := r.Load()
	require.NoError(t, err)
	require.True(t, got.IsEmpty())
}

func TestRepo_CorruptFile(t *testing.T) {
	path := sessionPath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := filerepo.New(path).Load()
	require.Error(t, err)
}

func TestRepo_Sealed(t *testing.T) {
	path := sessionPath(t)
	want := sessions.Session{AccessToken: "A1", RefreshToken: "refresh-secret-R1", UserID: "7"}

	t.Run("round trip", func(t *testing.T) {
		r := filerepo.New(path, filerepo.WithPassphrase("correct horse"))
		require.NoError(t, r.Save(want))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NotContains(t, string(data), "refresh-secret")

		got, err := r.Load()
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		_, err := filerepo.New(path, filerepo.WithPassphrase("battery staple")).Load()
		require.Error(t, err)
		require.True(t, errors.Is(err, errors.ErrUnsealSession))
	})

	t.Run("no passphrase", func(t *testing.T) {
		_, err := filerepo.New(path).Load()
		require.Error(t, err)
		require.True(t, errors.Is(err, errors.ErrUnsealSession))
	})
}
