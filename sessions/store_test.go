package sessions_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/jrsteele09/go-travels-client/sessions"
	fakesessionrepo "github.com/jrsteele09/go-travels-client/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

func TestStore_RestoresPersistedSession(t *testing.T) {
	persisted := sessions.Session{AccessToken: "A1", RefreshToken: "R1", IsAdmin: true, UserID: "3"}
	store := sessions.NewStore(fakesessionrepo.NewFakeSessionRepoWith(persisted))

	require.Equal(t, persisted, store.Current())
	require.Equal(t, "A1", store.AccessToken())
	require.Equal(t, "R1", store.RefreshToken())
}

func TestStore_EmptyRepoIsSignedOut(t *testing.T) {
	store := sessions.NewStore(fakesessionrepo.NewFakeSessionRepo())

	current := store.Current()
	require.True(t, current.IsEmpty())
	require.False(t, current.IsAuthenticated())
	require.False(t, current.CanRefresh())
	require.False(t, current.IsAdmin)
}

func TestStore_UnreadableRepoIsSignedOut(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	repo.LoadErr = errors.New("disk on fire")

	store := sessions.NewStore(repo)
	require.True(t, store.Current().IsEmpty())
}

func TestStore_SaveThenLoadRoundTrip(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	store := sessions.NewStore(repo)
	saved := sessions.Session{AccessToken: "A1", RefreshToken: "R1", IsAdmin: false, UserID: "9"}

	require.NoError(t, store.Save(saved))
	require.Equal(t, saved, sessions.NewStore(repo).Current())
	require.Equal(t, saved, store.Load())
}

func TestStore_ClearThenLoadIsEmpty(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepoWith(sessions.Session{AccessToken: "A1", RefreshToken: "R1", IsAdmin: true})
	store := sessions.NewStore(repo)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	require.True(t, store.Current().IsEmpty())
	require.True(t, store.Load().IsEmpty())
	require.Equal(t, 2, repo.Clears())
}

func TestStore_SetTokensKeepsRefreshAndRole(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepoWith(sessions.Session{AccessToken: "A1", RefreshToken: "R1", IsAdmin: true, UserID: "3"})
	store := sessions.NewStore(repo)

	require.NoError(t, store.SetTokens("A2", ""))

	want := sessions.Session{AccessToken: "A2", RefreshToken: "R1", IsAdmin: true, UserID: "3"}
	require.Equal(t, want, store.Current())
	persisted, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, want, persisted)
}

func TestStore_SetTokensRotatesRefresh(t *testing.T) {
	store := sessions.NewStore(fakesessionrepo.NewFakeSessionRepoWith(sessions.Session{AccessToken: "A1", RefreshToken: "R1"}))

	require.NoError(t, store.SetTokens("A2", "R2"))
	require.Equal(t, sessions.Session{AccessToken: "A2", RefreshToken: "R2"}, store.Current())

	require.NoError(t, store.SetTokens("A3", ""))
	require.Equal(t, sessions.Session{AccessToken: "A3", RefreshToken: "R2"}, store.Current())
}

func TestStore_PersistFailureStillUpdatesMemory(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	repo.SaveErr = errors.New("read-only filesystem")
	store := sessions.NewStore(repo)

	err := store.Save(sessions.Session{AccessToken: "A1"})
	require.Error(t, err)
	require.Equal(t, "A1", store.AccessToken())
}

func TestStore_ConcurrentWritersNeverTearSession(t *testing.T) {
	store := sessions.NewStore(fakesessionrepo.NewFakeSessionRepo())
	a := sessions.Session{AccessToken: "A", RefreshToken: "RA", IsAdmin: true, UserID: "1"}
	b := sessions.Session{AccessToken: "B", RefreshToken: "RB", IsAdmin: false, UserID: "2"}

	var torn atomic.Bool
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); _ = store.Save(a) }()
		go func() { defer wg.Done(); _ = store.Save(b) }()
		go func() {
			defer wg.Done()
			if current := store.Current(); current != a && current != b && !current.IsEmpty() {
				torn.Store(true)
			}
		}()
	}
	wg.Wait()
	require.False(t, torn.Load())
}

func TestStore_TokenSource(t *testing.T) {
	store := sessions.NewStore(fakesessionrepo.NewFakeSessionRepo())
	ts := store.TokenSource()

	_, err := ts.Token()
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)

	require.NoError(t, store.Save(sessions.Session{AccessToken: "A1", RefreshToken: "R1"}))
	tok, err := ts.Token()
	require.NoError(t, err)
	require.Equal(t, "A1", tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
}
